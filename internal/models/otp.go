package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPPurpose string

const (
	PurposeRegistration OTPPurpose = "registration"
	PurposeLogin        OTPPurpose = "login"
	PurposeReset        OTPPurpose = "reset"
)

// OTP is an emailed one-time code. Rows are never deleted; superseded or
// consumed codes are flagged used so the audit trail survives.
type OTP struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string     `gorm:"index:idx_otps_lookup,priority:1;not null" json:"email"`
	Purpose  OTPPurpose `gorm:"type:varchar(16);index:idx_otps_lookup,priority:2;not null" json:"purpose"`
	CodeHash string     `gorm:"type:varchar(64);not null" json:"-"`

	Attempts int  `gorm:"not null;default:0" json:"attempts"`
	Used     bool `gorm:"not null;default:false" json:"used"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"index:idx_otps_lookup,priority:3;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
