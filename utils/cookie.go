package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the one cookie this app reads and writes.
const SessionCookieName = "top_doggo_auth_token"

// NewSessionCookie builds the session cookie with its fixed attributes.
// Sessions have no server-side expiry, so the cookie lives ~10 years.
func NewSessionCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().AddDate(10, 0, 0),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
