package services

import (
	"errors"
	"math"

	"top-doggo/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingService owns the Elo bookkeeping for both rating tracks.
// https://en.wikipedia.org/wiki/Elo_rating_system#Theory
type RatingService struct {
	DB *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{DB: db}
}

// UpdateRatings applies one decided match to one rating track. It is called
// twice per decision: once for the overall track and once for the deciding
// user's personal track.
func (s *RatingService) UpdateRatings(userID string, match *models.Match, ratingType models.RatingType, status string) error {
	ratingA, err := s.currentRating(match.DogAID, ratingType, userID)
	if err != nil {
		return err
	}
	ratingB, err := s.currentRating(match.DogBID, ratingType, userID)
	if err != nil {
		return err
	}

	// The just-decided match is already in the count, so subtract it from
	// each dog's K-factor history.
	numA, err := s.numDecidedMatches(match.DogAID, ratingType, userID)
	if err != nil {
		return err
	}
	numB, err := s.numDecidedMatches(match.DogBID, ratingType, userID)
	if err != nil {
		return err
	}
	kA := maxRatingChange(numA - 1)
	kB := maxRatingChange(numB - 1)

	expectedA := expectedScore(ratingA.Value, ratingB.Value)
	expectedB := 1.0 - expectedA

	var actualA float64
	switch status {
	case models.MatchAWins:
		actualA = 1.0
	case models.MatchBWins:
		actualA = 0.0
	case models.MatchTie:
		actualA = 0.5
	default:
		return errors.New("elo: match status is not a decided outcome")
	}
	actualB := 1.0 - actualA

	newA := newRating(ratingA.Value, kA, actualA, expectedA)
	newB := newRating(ratingB.Value, kB, actualB, expectedB)

	changes := map[string]interface{}{}
	switch ratingType {
	case models.RatingOverall:
		changes["elo_change_overall_a"] = newA - ratingA.Value
		changes["elo_change_overall_b"] = newB - ratingB.Value
	case models.RatingPersonal:
		changes["elo_change_personal_a"] = newA - ratingA.Value
		changes["elo_change_personal_b"] = newB - ratingB.Value
	}
	if err := s.DB.Model(&models.Match{}).Where("id = ?", match.ID).Updates(changes).Error; err != nil {
		return err
	}

	if err := s.DB.Model(&models.Rating{}).Where("id = ?", ratingA.ID).Update("value", newA).Error; err != nil {
		return err
	}
	return s.DB.Model(&models.Rating{}).Where("id = ?", ratingB.ID).Update("value", newB).Error
}

// currentRating loads a dog's rating row for a track, seeding it with the
// default value on first reference.
func (s *RatingService) currentRating(dogID string, ratingType models.RatingType, userID string) (*models.Rating, error) {
	scopedUserID := ""
	if ratingType == models.RatingPersonal {
		scopedUserID = userID
	}

	var rating models.Rating
	err := s.DB.Where("dog_id = ? AND type = ? AND user_id = ?", dogID, ratingType, scopedUserID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rating = models.Rating{
			ID:     uuid.NewString(),
			DogID:  dogID,
			Type:   ratingType,
			UserID: scopedUserID,
			Value:  models.DefaultRating,
		}
		if err := s.DB.Create(&rating).Error; err != nil {
			return nil, err
		}
		return &rating, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// numDecidedMatches counts decided matches involving the dog: all users for
// the overall track, only the given user's for the personal track.
func (s *RatingService) numDecidedMatches(dogID string, ratingType models.RatingType, userID string) (int64, error) {
	var count int64
	q := s.DB.Model(&models.Match{}).
		Where("(dog_a_id = ? OR dog_b_id = ?)", dogID, dogID).
		Where("status <> ?", models.MatchPending)
	if ratingType == models.RatingPersonal {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Count(&count).Error
	return count, err
}

// maxRatingChange is the K-factor schedule: new dogs move fast, established
// ones stabilize. Steps down at 5 and 10 prior matches.
func maxRatingChange(numMatches int64) int {
	if numMatches < 5 {
		return 128
	}
	if numMatches < 10 {
		return 64
	}
	return 32
}

func expectedScore(myRating, theirRating int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(theirRating-myRating)/400.0))
}

func newRating(current, maxChange int, actual, expected float64) int {
	next := int(math.Round(float64(current) + float64(maxChange)*(actual-expected)))
	if next < models.RatingFloor {
		return models.RatingFloor
	}
	return next
}
