package models

import (
	"time"
)

// User is created implicitly on a visitor's first request. Email stays empty
// until a magic-link signup verifies one; rows are never deleted.
type User struct {
	ID      string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email   *string `gorm:"uniqueIndex" json:"email,omitempty"`
	TotalXP int64   `json:"total_xp" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Session binds a client-side cookie token to a user. Several sessions may
// point at the same user (multi-device); the token string itself never
// changes once issued, logins mint a fresh token instead.
type Session struct {
	Token  string `gorm:"primaryKey" json:"token"`
	UserID string `gorm:"index;not null;type:uuid" json:"user_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
