package repositories

import (
	"errors"
	"time"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPRepository interface {
	CountSince(email string, purpose models.OTPPurpose, since time.Time) (int64, error)
	InvalidateUnused(email string, purpose models.OTPPurpose) error
	Create(otp *models.OTP) error
	LatestUnused(email string, purpose models.OTPPurpose) (*models.OTP, error)
	// IncrementAttempts spends one verification attempt. It only succeeds
	// while the code is unused and under maxAttempts, so two concurrent
	// verifications cannot both pass the budget check.
	IncrementAttempts(id uuid.UUID, maxAttempts int) (bool, error)
	MarkUsed(id uuid.UUID) error
	InTx(fn func(OTPRepository) error) error
}

type gormOTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &gormOTPRepository{db: db}
}

func (r *gormOTPRepository) CountSince(email string, purpose models.OTPPurpose, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.OTP{}).
		Where("email = ? AND purpose = ? AND created_at >= ?", email, purpose, since).
		Count(&count).Error
	return count, err
}

func (r *gormOTPRepository) InvalidateUnused(email string, purpose models.OTPPurpose) error {
	return r.db.Model(&models.OTP{}).
		Where("email = ? AND purpose = ? AND used = ?", email, purpose, false).
		Update("used", true).Error
}

func (r *gormOTPRepository) Create(otp *models.OTP) error {
	return r.db.Create(otp).Error
}

func (r *gormOTPRepository) LatestUnused(email string, purpose models.OTPPurpose) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.
		Where("email = ? AND purpose = ? AND used = ?", email, purpose, false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &otp, nil
}

func (r *gormOTPRepository) IncrementAttempts(id uuid.UUID, maxAttempts int) (bool, error) {
	res := r.db.Model(&models.OTP{}).
		Where("id = ? AND used = ? AND attempts < ?", id, false, maxAttempts).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormOTPRepository) MarkUsed(id uuid.UUID) error {
	return r.db.Model(&models.OTP{}).
		Where("id = ?", id).
		Update("used", true).Error
}

func (r *gormOTPRepository) InTx(fn func(OTPRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormOTPRepository{db: tx})
	})
}
