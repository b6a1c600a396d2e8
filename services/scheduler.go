package services

import (
	"log"
	"time"

	"top-doggo/models"

	"github.com/go-co-op/gocron/v2"
)

// StartTokenPurgeScheduler removes email tokens long past any possible
// redemption window. Expiry itself is derived at query time; this just keeps
// the table from growing forever.
func (s *MagicLinkService) StartTokenPurgeScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.purgeDeadTokens),
	)
}

func (s *MagicLinkService) purgeDeadTokens() {
	cutoff := time.Now().Add(-24 * time.Hour)
	res := s.DB.Where("created_at < ?", cutoff).Delete(&models.EmailToken{})
	if res.Error != nil {
		log.Printf("[Scheduler] token purge failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("[Scheduler] purged %d dead email tokens", res.RowsAffected)
	}
}
