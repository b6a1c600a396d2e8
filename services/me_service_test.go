package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"top-doggo/models"
	"top-doggo/testutil"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func newMeApp(db *gorm.DB, user *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		return c.Next()
	})
	app.Get("/me", NewMeService(db).Me)
	return app
}

func TestMeReportsProgression(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedUser(t, db)
	if err := db.Model(user).Update("total_xp", 2500).Error; err != nil {
		t.Fatal(err)
	}
	user.TotalXP = 2500
	app := newMeApp(db, user)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body := decodeJSON(t, resp)

	// 2500 XP sits in level 1: past the 1000 threshold, 1500 into the
	// 2000-wide band toward level 2.
	if body["level"] != float64(1) {
		t.Errorf("level = %v, want 1", body["level"])
	}
	if body["xp_remainder"] != float64(1500) {
		t.Errorf("xp_remainder = %v, want 1500", body["xp_remainder"])
	}
	if body["next_xp_target"] != float64(2000) {
		t.Errorf("next_xp_target = %v, want 2000", body["next_xp_target"])
	}
	if body["recently_sent_magic_link"] != false {
		t.Errorf("recently_sent_magic_link = %v, want false", body["recently_sent_magic_link"])
	}
	if _, ok := body["xp_bonus"]; ok {
		t.Error("xp_bonus present without new_user=true")
	}
}

func TestMeNewUserShowsBonus(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedUser(t, db)
	app := newMeApp(db, user)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me?new_user=true", nil))
	if err != nil {
		t.Fatal(err)
	}
	body := decodeJSON(t, resp)
	if body["xp_bonus"] != float64(SignupBonusXP) {
		t.Errorf("xp_bonus = %v, want %d", body["xp_bonus"], SignupBonusXP)
	}
}

func TestMeFlagsRecentMagicLinkSend(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedUser(t, db)
	app := newMeApp(db, user)

	NewAuditService(db).Record(models.ActionSendMagicLink, user.ID, "127.0.0.1", "doglover@example.com")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatal(err)
	}
	body := decodeJSON(t, resp)
	if body["recently_sent_magic_link"] != true {
		t.Errorf("recently_sent_magic_link = %v, want true", body["recently_sent_magic_link"])
	}
}
