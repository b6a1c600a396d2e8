package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"top-doggo/models"
	"top-doggo/services"
	"top-doggo/testutil"
	"top-doggo/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newSessionApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Use(SessionMiddleware(services.NewIdentityService(db)))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id").(string)})
	})
	return app
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == utils.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestNewVisitorGetsGuestAndCookie(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := newSessionApp(db)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cookie := sessionCookie(t, resp)
	if cookie == nil {
		t.Fatal("no session cookie on first visit")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if cookie.Path != "/" {
		t.Errorf("cookie path = %q, want /", cookie.Path)
	}

	var users, sessions int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Session{}).Count(&sessions)
	if users != 1 || sessions != 1 {
		t.Errorf("rows after first visit: %d users, %d sessions, want 1 each", users, sessions)
	}
}

func TestKnownSessionIsReused(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := newSessionApp(db)

	first, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if err != nil {
		t.Fatal(err)
	}
	cookie := sessionCookie(t, first)
	if cookie == nil {
		t.Fatal("no cookie on first visit")
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	second, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if c := sessionCookie(t, second); c != nil {
		t.Error("known session should not get a fresh cookie")
	}

	var users, sessions int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Session{}).Count(&sessions)
	if users != 1 || sessions != 1 {
		t.Errorf("repeat visit grew the tables: %d users, %d sessions", users, sessions)
	}
}

func TestStaleGuestSessionConvergesToOwner(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := newSessionApp(db)

	// Establish a guest session the normal way.
	first, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if err != nil {
		t.Fatal(err)
	}
	cookie := sessionCookie(t, first)
	if cookie == nil {
		t.Fatal("no cookie on first visit")
	}
	var guest models.Session
	if err := db.First(&guest, "token = ?", cookie.Value).Error; err != nil {
		t.Fatal(err)
	}

	// Simulate the other tab: this guest's magic link was redeemed and the
	// email belongs to an existing account.
	email := "doglover@example.com"
	owner := models.User{ID: uuid.NewString(), Email: &email}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatal(err)
	}
	svc := services.NewMagicLinkService(db, &services.LogMailer{},
		services.NewAuditService(db), services.NewIdentityService(db), "http://localhost:5200")
	if err := svc.Issue(email, guest.UserID); err != nil {
		t.Fatal(err)
	}
	var token models.EmailToken
	if err := db.First(&token, "sender_id = ?", guest.UserID).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Redeem(token.Token, guest.UserID, nil); err != nil {
		t.Fatal(err)
	}

	// The stale tab's next request converges onto the owner.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body := make([]byte, 512)
	n, _ := resp.Body.Read(body)
	if !strings.Contains(string(body[:n]), owner.ID) {
		t.Errorf("request still resolves to the guest: %s", body[:n])
	}

	moved := sessionCookie(t, resp)
	if moved == nil {
		t.Fatal("convergence must hand out a replacement cookie")
	}
	var replacement models.Session
	if err := db.First(&replacement, "token = ?", moved.Value).Error; err != nil {
		t.Fatal(err)
	}
	if replacement.UserID != owner.ID {
		t.Errorf("replacement session belongs to %s, want %s", replacement.UserID, owner.ID)
	}
}
