package models

import (
	"fmt"
	"time"
)

// RatingType selects the Elo track a rating belongs to.
type RatingType string

const (
	// RatingOverall is the global track, shared by all users.
	RatingOverall RatingType = "overall"
	// RatingPersonal is scoped to a single viewer's own picks.
	RatingPersonal RatingType = "personal"
)

// ParseRatingType converts the snake_case path parameter used by the
// leaderboard routes into a RatingType.
func ParseRatingType(s string) (RatingType, error) {
	switch RatingType(s) {
	case RatingOverall, RatingPersonal:
		return RatingType(s), nil
	}
	return "", fmt.Errorf("unknown rating type %q", s)
}

// DefaultRating seeds a dog's first rating on either track.
const DefaultRating = 1000

// RatingFloor is the lowest value any rating can reach.
const RatingFloor = 100

// Rating holds one dog's Elo value on one track. Overall rows leave UserID
// empty; personal rows carry the owning user. Rows are created lazily the
// first time a track is consulted for a dog.
type Rating struct {
	ID     string     `gorm:"primaryKey;type:uuid" json:"id"`
	DogID  string     `gorm:"not null;type:uuid;uniqueIndex:idx_rating_key" json:"dog_id"`
	Type   RatingType `gorm:"not null;default:'overall';uniqueIndex:idx_rating_key" json:"type"`
	UserID string     `gorm:"uniqueIndex:idx_rating_key" json:"user_id,omitempty"`
	Value  int        `gorm:"not null" json:"value"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
