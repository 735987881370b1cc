package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog is an append-only audit row. Rows are never updated or deleted
// by application code.
type ActivityLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Action     string    `gorm:"type:varchar(32);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(32);not null" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(64);not null" json:"entity_id"`

	// Before/after values or import stats, shape depends on the action.
	Changes datatypes.JSONMap `json:"changes,omitempty"`

	IPAddress *string `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"type:varchar(512)" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"index;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
