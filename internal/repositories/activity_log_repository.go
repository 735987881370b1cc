package repositories

import (
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityLogFilter struct {
	EntityType string
	Action     string
	Offset     int
	Limit      int
}

type ActivityLogRepository interface {
	Create(entry *models.ActivityLog) error
	ListByUser(userID uuid.UUID, filter ActivityLogFilter) ([]models.ActivityLog, error)
}

type gormActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &gormActivityLogRepository{db: db}
}

func (r *gormActivityLogRepository) Create(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *gormActivityLogRepository) ListByUser(userID uuid.UUID, filter ActivityLogFilter) ([]models.ActivityLog, error) {
	query := r.db.Where("user_id = ?", userID)
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var logs []models.ActivityLog
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&logs).Error
	return logs, err
}
