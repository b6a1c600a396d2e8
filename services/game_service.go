package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"top-doggo/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GameService drives the voting loop: show a match, take a decision, update
// both rating tracks, pay out XP, and hand back the next match.
type GameService struct {
	DB         *gorm.DB
	Matchmaker *MatchmakerService
	Ratings    *RatingService
	Audit      *AuditService
}

func NewGameService(db *gorm.DB, matchmaker *MatchmakerService, ratings *RatingService, audit *AuditService) *GameService {
	return &GameService{DB: db, Matchmaker: matchmaker, Ratings: ratings, Audit: audit}
}

// matchView renders the caller's current game state as plain data.
func (s *GameService) matchView(userID string) (fiber.Map, error) {
	dogA, dogB, err := s.Matchmaker.GetMatch(userID)
	if err != nil {
		return nil, err
	}
	if dogA == nil {
		// The user has compared everything against everything.
		return fiber.Map{"won": true}, nil
	}
	pending, err := s.Matchmaker.PendingMatch(userID)
	if err != nil {
		return nil, err
	}
	view := fiber.Map{"won": false, "dog_a": dogA, "dog_b": dogB}
	if pending != nil {
		view["match_id"] = pending.ID
	}
	return view, nil
}

// Home returns the current (or a freshly created) match for the caller.
func (s *GameService) Home(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	view, err := s.matchView(userID)
	if err != nil {
		log.Printf("DB Error building match view: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}
	return c.JSON(view)
}

// PickWinner decides the pending match. The path parameter is either one of
// the pending dogs' ids or the literal "tie". Anything stale or invalid is a
// soft no-op: the caller just gets the fresh match view back.
func (s *GameService) PickWinner(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	winner := c.Params("winner")

	freshView := func(extra fiber.Map) error {
		view, err := s.matchView(userID)
		if err != nil {
			log.Printf("DB Error building match view: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
		}
		for k, v := range extra {
			view[k] = v
		}
		return c.JSON(view)
	}

	pending, err := s.Matchmaker.PendingMatch(userID)
	if err != nil {
		log.Printf("DB Error loading pending match: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}
	if pending == nil {
		return freshView(nil)
	}

	var status string
	switch winner {
	case pending.DogAID:
		status = models.MatchAWins
	case pending.DogBID:
		status = models.MatchBWins
	case "tie":
		status = models.MatchTie
	default:
		return freshView(nil)
	}

	// First write wins: a concurrent decision that already flipped the
	// status turns this request into a no-op.
	res := s.DB.Model(&models.Match{}).
		Where("id = ? AND status = ?", pending.ID, models.MatchPending).
		Update("status", status)
	if res.Error != nil {
		log.Printf("DB Error deciding match %s: %v", pending.ID, res.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}
	if res.RowsAffected == 0 {
		return freshView(nil)
	}

	if err := s.Ratings.UpdateRatings(userID, pending, models.RatingOverall, status); err != nil {
		log.Printf("DB Error updating overall ratings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}
	if err := s.Ratings.UpdateRatings(userID, pending, models.RatingPersonal, status); err != nil {
		log.Printf("DB Error updating personal ratings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}

	deliberated := time.Since(pending.CreatedAt).Seconds()
	xpEarned := XPIncreaseFromPick(deliberated)
	err = s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("total_xp", gorm.Expr("total_xp + ?", xpEarned)).Error
	if err != nil {
		log.Printf("DB Error awarding pick XP: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}

	return freshView(fiber.Map{"xp_earned": xpEarned})
}

// NameDogForUser applies the one-time naming rules. A non-empty formErr is a
// user-facing validation message; err is a real failure.
func (s *GameService) NameDogForUser(userID, dogID, newName string) (finalName string, formErr string, err error) {
	newName = strings.TrimSpace(newName)

	if newName == "" {
		return "", "^ Type this dog's new name right up here :)", nil
	}
	if newName == "Jeff" {
		return "", "NO, don't name him Jeff >:(", nil
	}

	var dog models.Dog
	err = s.DB.First(&dog, "id = ?", dogID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "404: Dog not found", nil
	}
	if err != nil {
		return "", "", err
	}
	if dog.Name != nil {
		return "", *dog.Name + " already has a name, silly.", nil
	}

	// The unique index on names arbitrates duplicates, racing namers included.
	err = s.DB.Model(&models.Dog{}).Where("id = ?", dogID).
		Updates(map[string]interface{}{"name": newName, "namer_id": userID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", "C'mon, something more original!", nil
	}
	if err != nil {
		return "", "", err
	}

	err = s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("total_xp", gorm.Expr("total_xp + ?", NameDogBonusXP)).Error
	if err != nil {
		return "", "", err
	}
	return newName, "", nil
}

// NameDog handles the naming form under a dog's picture.
func (s *GameService) NameDog(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	dogID := c.FormValue("dog_id")
	newName := c.FormValue("new_name")

	finalName, formErr, err := s.NameDogForUser(userID, dogID, newName)
	if err != nil {
		log.Printf("DB Error naming dog %s: %v", dogID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}
	if formErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"field": "new_name", "value": strings.TrimSpace(newName), "error": formErr,
		})
	}

	s.Audit.Record(models.ActionNameDog, userID, c.Locals("client_ip").(string), dogID+" "+finalName)

	return c.JSON(fiber.Map{"name": finalName})
}
