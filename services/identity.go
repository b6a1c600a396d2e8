package services

import (
	"errors"
	"time"

	"top-doggo/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityService owns the session-token-to-user binding. The session
// middleware drives it on every request; the magic-link login path uses it
// to mint sessions for freshly authenticated users.
type IdentityService struct {
	DB *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{DB: db}
}

// ResolveToken maps a cookie token to its owning user. A missing or unknown
// token is not an error, just an unrecognized visitor.
func (s *IdentityService) ResolveToken(token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	var session models.Session
	err := s.DB.First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return session.UserID, true, nil
}

// CreateGuest makes a bare user and a session for a first-time visitor.
func (s *IdentityService) CreateGuest() (userID, token string, err error) {
	user := models.User{ID: uuid.NewString()}
	if err := s.DB.Create(&user).Error; err != nil {
		return "", "", err
	}
	token, err = s.MintSession(user.ID)
	if err != nil {
		return "", "", err
	}
	return user.ID, token, nil
}

// MintSession issues a fresh opaque token bound to the given user.
func (s *IdentityService) MintSession(userID string) (string, error) {
	session := models.Session{
		Token:  uuid.NewString(),
		UserID: userID,
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return "", err
	}
	return session.Token, nil
}

// UserEmail loads the verified email of a user, nil for guests.
func (s *IdentityService) UserEmail(userID string) (*string, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return user.Email, nil
}

// Converge self-heals a stale guest session after an out-of-band login: if a
// magic link this session requested was redeemed recently and the email
// turned out to belong to a different account, the session moves to that
// account. Sessions already bound to an email never converge; the login
// route's "already logged in" refusal is the only rule that applies to them.
func (s *IdentityService) Converge(userID string) (newUserID, newToken string, moved bool, err error) {
	email, err := s.UserEmail(userID)
	if err != nil {
		return "", "", false, err
	}
	if email != nil {
		return "", "", false, nil
	}

	cutoff := time.Now().Add(-models.EmailTokenTTL)
	var token models.EmailToken
	err = s.DB.Where("sender_id = ? AND used = ? AND used_at > ?", userID, true, cutoff).
		Where("email_haver_id IS NOT NULL AND email_haver_id <> ?", userID).
		Order("used_at DESC").
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}

	newToken, err = s.MintSession(*token.EmailHaverID)
	if err != nil {
		return "", "", false, err
	}
	return *token.EmailHaverID, newToken, true, nil
}
