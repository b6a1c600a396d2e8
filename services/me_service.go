package services

import (
	"log"
	"time"

	"top-doggo/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MeService serves the caller's own profile and progression numbers.
type MeService struct {
	DB *gorm.DB
}

func NewMeService(db *gorm.DB) *MeService {
	return &MeService{DB: db}
}

// Me serves GET /me. `new_user=true` is set by the signup redirect so the
// page can show the one-time bonus.
func (s *MeService) Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	email, _ := c.Locals("user_email").(*string)

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		log.Printf("DB Error loading user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}

	// Show "check your inbox" instead of the form right after a send.
	var recentSends int64
	err := s.DB.Model(&models.AuditLog{}).
		Where("action = ? AND user_id = ? AND created_at > ?",
			models.ActionSendMagicLink, userID, time.Now().Add(-5*time.Minute)).
		Count(&recentSends).Error
	if err != nil {
		log.Printf("DB Error counting recent magic links: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}

	view := fiber.Map{
		"email":                    email,
		"total_xp":                 user.TotalXP,
		"level":                    LevelForXP(user.TotalXP),
		"xp_remainder":             XPRemainder(user.TotalXP),
		"next_xp_target":           NextXPTarget(user.TotalXP),
		"recently_sent_magic_link": recentSends > 0,
	}
	if c.Query("new_user") == "true" {
		view["xp_bonus"] = SignupBonusXP
	}
	return c.JSON(view)
}
