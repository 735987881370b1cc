package repositories

import (
	"errors"

	"github.com/bharthraj1412/nexora/internal/models"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *models.Session) error
	GetByTokenHash(hash string) (*models.Session, error)
	// DeleteByTokenHash reports how many rows were removed. Rotation relies
	// on the count: only the request that actually deleted the row may mint
	// a successor session.
	DeleteByTokenHash(hash string) (int64, error)
	DeleteByUser(userID string) (int64, error)
	InTx(fn func(SessionRepository) error) error
}

type gormSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

func (r *gormSessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

func (r *gormSessionRepository) GetByTokenHash(hash string) (*models.Session, error) {
	var session models.Session
	if err := r.db.First(&session, "refresh_token_hash = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *gormSessionRepository) DeleteByTokenHash(hash string) (int64, error) {
	res := r.db.Delete(&models.Session{}, "refresh_token_hash = ?", hash)
	return res.RowsAffected, res.Error
}

func (r *gormSessionRepository) DeleteByUser(userID string) (int64, error) {
	res := r.db.Delete(&models.Session{}, "user_id = ?", userID)
	return res.RowsAffected, res.Error
}

func (r *gormSessionRepository) InTx(fn func(SessionRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormSessionRepository{db: tx})
	})
}
