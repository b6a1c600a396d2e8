package models

import "time"

// Match statuses. A match is pending from creation until the user decides;
// the decided value records which side won from dog A's perspective.
const (
	MatchPending = "…"
	MatchAWins   = ">"
	MatchBWins   = "<"
	MatchTie     = "="
)

// Match is one proposed dog pair for one user. At most one pending match
// exists per user at any time. Once decided it is immutable except for the
// per-track rating deltas annotated onto it for display.
type Match struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"index;not null;type:uuid" json:"user_id"`
	DogAID string `gorm:"not null;type:uuid" json:"dog_a_id"`
	DogBID string `gorm:"not null;type:uuid" json:"dog_b_id"`
	Status string `gorm:"not null;default:'…';index" json:"status"`

	// Rating audit, filled in when the match is decided.
	EloChangeOverallA  int `json:"elo_change_overall_a" gorm:"default:0"`
	EloChangeOverallB  int `json:"elo_change_overall_b" gorm:"default:0"`
	EloChangePersonalA int `json:"elo_change_personal_a" gorm:"default:0"`
	EloChangePersonalB int `json:"elo_change_personal_b" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
