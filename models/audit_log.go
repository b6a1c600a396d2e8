package models

import "time"

// Audit actions written by the core flows.
const (
	ActionSendMagicLink = "send-magic-link"
	ActionLogIn         = "log-in"
	ActionSignUp        = "sign-up"
	ActionNameDog       = "name-dog"
)

// AuditLog is an append-only record of security-relevant events. Nothing in
// the request path reads it except the "recently sent a magic link" hint on
// the profile page.
type AuditLog struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Action   string `gorm:"index;not null" json:"action"`
	UserID   string `gorm:"index;type:uuid" json:"user_id"`
	ClientIP string `json:"client_ip,omitempty"`
	Notes    string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
