package models

import "time"

// EmailTokenTTL bounds how long a magic link stays redeemable.
const EmailTokenTTL = 30 * time.Minute

// EmailToken is a single-use magic-link token. SenderID records which
// session requested it; EmailHaverID is stamped at redemption with the
// account that ended up owning the email, which lets the session middleware
// converge a stale guest session onto the authenticated identity.
type EmailToken struct {
	Token    string `gorm:"primaryKey" json:"token"`
	Email    string `gorm:"index;not null" json:"email"`
	Used     bool   `gorm:"default:false" json:"used"`
	SenderID string `gorm:"index;type:uuid" json:"sender_id"`

	EmailHaverID *string    `gorm:"type:uuid" json:"email_haver_id,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Expired reports whether the token is past its redemption window at the
// given instant.
func (t *EmailToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > EmailTokenTTL
}
