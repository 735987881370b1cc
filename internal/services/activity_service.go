package services

import (
	"log"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RequestMeta carries request attribution into the audit trail.
type RequestMeta struct {
	IPAddress *string
	UserAgent *string
}

// ActivityService is the append-only audit trail over user actions.
type ActivityService struct {
	logs repositories.ActivityLogRepository
}

func NewActivityService(logs repositories.ActivityLogRepository) *ActivityService {
	return &ActivityService{logs: logs}
}

// Record appends an audit row. Audit failures are logged, never propagated:
// losing one trail entry must not fail the user's operation.
func (s *ActivityService) Record(userID uuid.UUID, action, entityType, entityID string, changes datatypes.JSONMap, meta RequestMeta) {
	entry := &models.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := s.logs.Create(entry); err != nil {
		log.Printf("warn: failed to write activity log for user %s: %v", userID, err)
	}
}

func (s *ActivityService) List(userID uuid.UUID, filter repositories.ActivityLogFilter) ([]models.ActivityLog, error) {
	return s.logs.ListByUser(userID, filter)
}
