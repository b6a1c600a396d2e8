package services

import (
	"errors"
	"math/rand"

	"top-doggo/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchmakerService picks which two dogs a user judges next. Selection is
// uniformly random on purpose: no weighting by rating or recency.
type MatchmakerService struct {
	DB *gorm.DB
}

func NewMatchmakerService(db *gorm.DB) *MatchmakerService {
	return &MatchmakerService{DB: db}
}

// PendingMatch returns the user's undecided match, or nil if there is none.
func (s *MatchmakerService) PendingMatch(userID string) (*models.Match, error) {
	var match models.Match
	err := s.DB.Where("user_id = ? AND status = ?", userID, models.MatchPending).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// GetMatch returns the dogs of the user's current pending match, creating a
// fresh one if needed. Repeated calls without a decision always return the
// same pair. A (nil, nil, nil) result means the user has compared every
// approved dog against every other: the terminal "you've won" state.
func (s *MatchmakerService) GetMatch(userID string) (*models.Dog, *models.Dog, error) {
	pending, err := s.PendingMatch(userID)
	if err != nil {
		return nil, nil, err
	}
	if pending != nil {
		return s.loadPair(pending.DogAID, pending.DogBID)
	}

	// Each pass either creates a match or retires one dog into the user's
	// finished set, so the pool strictly shrinks and the loop is bounded by
	// the number of approved dogs.
	pool, err := s.eligibleDogIDs(userID)
	if err != nil {
		return nil, nil, err
	}
	for bound := len(pool); bound >= 0; bound-- {
		if len(pool) == 0 {
			return nil, nil, nil
		}

		dogAID := pool[rand.Intn(len(pool))]

		opponents, err := s.priorOpponents(userID, dogAID)
		if err != nil {
			return nil, nil, err
		}
		bPool, err := s.opponentPool(dogAID, opponents)
		if err != nil {
			return nil, nil, err
		}

		if len(bPool) == 0 {
			// Nothing left for this dog to face; mark it finished and retry.
			finished := models.FinishedDog{UserID: userID, DogID: dogAID}
			if err := s.DB.Create(&finished).Error; err != nil {
				return nil, nil, err
			}
			pool = remove(pool, dogAID)
			continue
		}

		dogBID := bPool[rand.Intn(len(bPool))]
		match := models.Match{
			ID:     uuid.NewString(),
			UserID: userID,
			DogAID: dogAID,
			DogBID: dogBID,
			Status: models.MatchPending,
		}
		if err := s.DB.Create(&match).Error; err != nil {
			return nil, nil, err
		}
		return s.loadPair(dogAID, dogBID)
	}
	return nil, nil, nil
}

// eligibleDogIDs is the user's remaining pool: approved dogs they have not
// finished with.
func (s *MatchmakerService) eligibleDogIDs(userID string) ([]string, error) {
	finished := s.DB.Model(&models.FinishedDog{}).Select("dog_id").Where("user_id = ?", userID)
	var ids []string
	err := s.DB.Model(&models.Dog{}).
		Where("approved = ?", true).
		Where("id NOT IN (?)", finished).
		Pluck("id", &ids).Error
	return ids, err
}

// priorOpponents collects every dog this user has already seen against the
// given dog, on either side of the pairing.
func (s *MatchmakerService) priorOpponents(userID, dogID string) (map[string]bool, error) {
	var matches []models.Match
	err := s.DB.Where("user_id = ? AND (dog_a_id = ? OR dog_b_id = ?)", userID, dogID, dogID).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if m.DogAID == dogID {
			seen[m.DogBID] = true
		} else {
			seen[m.DogAID] = true
		}
	}
	return seen, nil
}

func (s *MatchmakerService) opponentPool(dogAID string, opponents map[string]bool) ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.Dog{}).
		Where("approved = ? AND id <> ?", true, dogAID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	pool := ids[:0]
	for _, id := range ids {
		if !opponents[id] {
			pool = append(pool, id)
		}
	}
	return pool, nil
}

func (s *MatchmakerService) loadPair(dogAID, dogBID string) (*models.Dog, *models.Dog, error) {
	var dogA, dogB models.Dog
	if err := s.DB.First(&dogA, "id = ?", dogAID).Error; err != nil {
		return nil, nil, err
	}
	if err := s.DB.First(&dogB, "id = ?", dogBID).Error; err != nil {
		return nil, nil, err
	}
	return &dogA, &dogB, nil
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
