package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"top-doggo/models"
	"top-doggo/testutil"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func newUploadApp(db *gorm.DB, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("client_ip", "127.0.0.1")
		return c.Next()
	})
	app.Post("/upload", NewUploadService(db, newTestGame(db)).Upload)
	return app
}

// chdir is t.Chdir for Go versions before 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

// uploadRequest builds the add-your-dog multipart form. An empty photoType
// leaves the photo part out entirely.
func uploadRequest(t *testing.T, fields map[string]string, photoType string, photo []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatal(err)
		}
	}
	if photoType != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="new_dog_photo"; filename="dog.jpg"`)
		header.Set("Content-Type", photoType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadStoresDogPendingApproval(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedUser(t, db)
	app := newUploadApp(db, user.ID)
	chdir(t, t.TempDir())

	req := uploadRequest(t, map[string]string{"new_dog_name": "Biscuit"}, "image/jpeg", []byte("jpeg bytes"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var dog models.Dog
	if err := db.First(&dog, "namer_id = ?", user.ID).Error; err != nil {
		t.Fatalf("uploaded dog not stored: %v", err)
	}
	if dog.Approved {
		t.Error("fresh upload must wait for moderation")
	}
	if dog.Name == nil || *dog.Name != "Biscuit" {
		t.Errorf("name = %v, want Biscuit", dog.Name)
	}
	if !strings.HasPrefix(dog.ImageURL, "/uploads/biscuit-") {
		t.Errorf("image_url = %q, want a slugged /uploads/ path", dog.ImageURL)
	}

	var uploader models.User
	if err := db.First(&uploader, "id = ?", user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if uploader.TotalXP != NameDogBonusXP {
		t.Errorf("TotalXP = %d, want the naming bonus %d", uploader.TotalXP, NameDogBonusXP)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedUser(t, db)
	app := newUploadApp(db, user.ID)

	req := uploadRequest(t, nil, "text/plain", []byte("not a picture"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	if body["field"] != "new_dog_photo" {
		t.Errorf("field = %v, want new_dog_photo", body["field"])
	}

	var dogs int64
	db.Model(&models.Dog{}).Count(&dogs)
	if dogs != 0 {
		t.Errorf("dog rows = %d, want 0", dogs)
	}
}

func TestUploadRequiresPhoto(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedUser(t, db)
	app := newUploadApp(db, user.ID)

	resp, err := app.Test(uploadRequest(t, map[string]string{"new_dog_name": "Biscuit"}, "", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadNamingRetryReusesDog(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := seedUser(t, db)
	app := newUploadApp(db, user.ID)
	chdir(t, t.TempDir())

	// First submit trips the naming rules; the photo is already stored.
	req := uploadRequest(t, map[string]string{"new_dog_name": "Jeff"}, "image/jpeg", []byte("jpeg bytes"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("first submit status = %d, want 400", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	if body["uploaded"] != true {
		t.Errorf("uploaded = %v, want true so the form keeps the photo", body["uploaded"])
	}

	// Retry with just a better name: no photo part, the marker instead.
	retry := uploadRequest(t, map[string]string{
		"new_dog_name":  "Rex",
		"new_dog_photo": "uploaded",
	}, "", nil)
	resp, err = app.Test(retry)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retry status = %d", resp.StatusCode)
	}

	var dogs []models.Dog
	if err := db.Find(&dogs).Error; err != nil {
		t.Fatal(err)
	}
	if len(dogs) != 1 {
		t.Fatalf("dog rows = %d, want the retry to reuse the first upload", len(dogs))
	}
	if dogs[0].Name == nil || *dogs[0].Name != "Rex" {
		t.Errorf("name = %v, want Rex", dogs[0].Name)
	}
}
