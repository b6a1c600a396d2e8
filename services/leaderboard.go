package services

import (
	"log"

	"top-doggo/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LeaderboardService ranks dogs by rating on either track.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// LeaderboardRow is one ranked dog.
type LeaderboardRow struct {
	Position int     `json:"position"`
	Name     *string `json:"name"`
	ImageURL string  `json:"image_url"`
	Value    int     `json:"value"`
}

// Top serves /leaderboard/top/:rating_type.
func (s *LeaderboardService) Top(c *fiber.Ctx) error {
	ratingType, err := models.ParseRatingType(c.Params("rating_type"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown rating type"})
	}
	userID := c.Locals("user_id").(string)

	q := s.DB.Model(&models.Rating{}).
		Select("dogs.name AS name, dogs.image_url AS image_url, ratings.value AS value").
		Joins("JOIN dogs ON dogs.id = ratings.dog_id").
		Where("ratings.type = ?", ratingType).
		Order("ratings.value DESC")
	if ratingType == models.RatingPersonal {
		q = q.Where("ratings.user_id = ?", userID)
	}

	var rows []LeaderboardRow
	if err := q.Scan(&rows).Error; err != nil {
		log.Printf("DB Error fetching %s leaderboard: %v", ratingType, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}
	for i := range rows {
		rows[i].Position = i + 1
	}

	return c.JSON(fiber.Map{
		"rating_type": ratingType,
		"rows":        rows,
	})
}
