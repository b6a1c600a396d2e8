package services

import (
	"log"

	"top-doggo/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditService appends security-relevant events. Writes are fire-and-forget:
// a failed audit insert must never fail the operation that triggered it.
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

func (s *AuditService) Record(action, userID, clientIP, notes string) {
	entry := models.AuditLog{
		ID:       uuid.NewString(),
		Action:   action,
		UserID:   userID,
		ClientIP: clientIP,
		Notes:    notes,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("[AUDIT] failed to record %s for user %s: %v", action, userID, err)
	}
}
