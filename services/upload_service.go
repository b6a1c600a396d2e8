package services

import (
	"fmt"
	"io"
	"log"
	"strings"

	"top-doggo/models"
	"top-doggo/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UploadService takes new dog photos. Fresh dogs stay unapproved (and out of
// matchmaking) until moderation flips them on.
type UploadService struct {
	DB   *gorm.DB
	Game *GameService
}

func NewUploadService(db *gorm.DB, game *GameService) *UploadService {
	return &UploadService{DB: db, Game: game}
}

// Upload handles the add-your-dog form: a photo (required on first submit),
// an optional name, and the "uploaded" re-submit marker used when only the
// name needs fixing. Creating the dog row and storing its image commit as
// one unit.
func (s *UploadService) Upload(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	dogName := strings.TrimSpace(c.FormValue("new_dog_name"))

	photoAlreadyUploaded := c.FormValue("new_dog_photo") == "uploaded"

	var photo []byte
	var contentType string
	if !photoAlreadyUploaded {
		fileHeader, err := c.FormFile("new_dog_photo")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"field": "new_dog_photo", "error": "Required",
			})
		}
		contentType = fileHeader.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"field": "new_dog_photo", "error": "Must be an image",
			})
		}
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("Error opening upload: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error processing form"})
		}
		defer file.Close()
		photo, err = io.ReadAll(file)
		if err != nil {
			log.Printf("Error reading upload: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error processing form"})
		}
	}

	var dogID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if photoAlreadyUploaded {
			// Second attempt after a naming error: reuse the dog from the
			// first submit instead of storing the photo twice.
			var dog models.Dog
			err := tx.Where("approved = ? AND namer_id = ? AND name IS NULL", false, userID).
				Order("created_at DESC").
				First(&dog).Error
			if err != nil {
				return fmt.Errorf("couldn't find uploaded dog: %w", err)
			}
			dogID = dog.ID
			return nil
		}

		dog := models.Dog{
			ID:       uuid.NewString(),
			ImageURL: "temp",
			Approved: false,
			NamerID:  &userID,
		}
		if err := tx.Create(&dog).Error; err != nil {
			return err
		}
		dogID = dog.ID

		imageURL, err := s.storePhoto(dogID, dogName, photo, contentType)
		if err != nil {
			return err
		}
		return tx.Model(&models.Dog{}).Where("id = ?", dogID).Update("image_url", imageURL).Error
	})
	if err != nil {
		log.Printf("Error storing dog upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error processing form"})
	}

	if dogName != "" {
		_, formErr, err := s.Game.NameDogForUser(userID, dogID, dogName)
		if err != nil {
			log.Printf("DB Error naming uploaded dog: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error processing form"})
		}
		if formErr != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"field": "new_dog_name", "value": dogName, "error": formErr, "uploaded": true,
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Thanks for adding your dog! Our team will approve em, and then they'll join the squad :)",
	})
}

// storePhoto writes the image to R2 when configured, local disk otherwise,
// and returns the public URL.
func (s *UploadService) storePhoto(dogID, dogName string, photo []byte, contentType string) (string, error) {
	filename := dogID + ".jpg"
	if dogName != "" {
		filename = fmt.Sprintf("%s-%s.jpg", slug.Make(dogName), dogID[:8])
	}

	if utils.R2Enabled() {
		return utils.UploadBytesToR2(photo, "dogs/"+filename, contentType)
	}
	if err := utils.SaveBytes(utils.GetUploadPath(filename), photo); err != nil {
		return "", err
	}
	return "/uploads/" + filename, nil
}
