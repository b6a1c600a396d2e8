package middleware

import (
	"log"

	"top-doggo/services"
	"top-doggo/utils"

	"github.com/gofiber/fiber/v2"
)

// SessionMiddleware resolves every inbound request to a stable user identity.
// Unknown visitors get a guest user and a session on the spot; known guest
// sessions self-heal onto an authenticated account if their magic link was
// redeemed elsewhere (the two-tab case). Handlers read the result from
// c.Locals: "user_id" (string), "user_email" (*string), "client_ip" (string).
func SessionMiddleware(identity *services.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(utils.SessionCookieName)

		userID, known, err := identity.ResolveToken(token)
		if err != nil {
			log.Printf("[SESSION] token lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
		}

		newToken := ""
		if !known {
			userID, newToken, err = identity.CreateGuest()
			if err != nil {
				log.Printf("[SESSION] guest creation failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
			}
		} else {
			movedUserID, movedToken, moved, err := identity.Converge(userID)
			if err != nil {
				log.Printf("[SESSION] convergence check failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
			}
			if moved {
				userID = movedUserID
				newToken = movedToken
			}
		}

		email, err := identity.UserEmail(userID)
		if err != nil {
			log.Printf("[SESSION] user load failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
		}

		c.Locals("user_id", userID)
		c.Locals("user_email", email)
		c.Locals("client_ip", c.IP())

		handlerErr := c.Next()

		// Handlers that log in or out own the Set-Cookie header; only attach
		// ours when nobody else did.
		if newToken != "" && len(c.Response().Header.Peek(fiber.HeaderSetCookie)) == 0 {
			c.Cookie(utils.NewSessionCookie(newToken))
		}

		return handlerErr
	}
}
