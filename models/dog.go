package models

import "time"

// Dog is a voting candidate. Unapproved dogs (fresh uploads awaiting
// moderation) never enter matchmaking. A dog is unnamed until some user
// names it; the name is then permanent and the namer gets attribution.
type Dog struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	ImageURL string  `gorm:"not null" json:"image_url"`
	Name     *string `gorm:"uniqueIndex" json:"name,omitempty"`
	Approved bool    `gorm:"default:false;index" json:"approved"`
	NamerID  *string `gorm:"type:uuid" json:"namer_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// FinishedDog marks that a user has compared this dog against every other
// approved dog, taking it out of their matchmaking pool.
type FinishedDog struct {
	UserID string `gorm:"primaryKey;type:uuid" json:"user_id"`
	DogID  string `gorm:"primaryKey;type:uuid" json:"dog_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
