package repositories

import (
	"errors"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OAuthAccountRepository interface {
	GetByProviderIdentity(provider, providerUserID string) (*models.OAuthAccount, error)
	GetByUserAndProvider(userID uuid.UUID, provider string) (*models.OAuthAccount, error)
	Create(account *models.OAuthAccount) error
	Update(account *models.OAuthAccount) error
}

type gormOAuthAccountRepository struct {
	db *gorm.DB
}

func NewOAuthAccountRepository(db *gorm.DB) OAuthAccountRepository {
	return &gormOAuthAccountRepository{db: db}
}

func (r *gormOAuthAccountRepository) GetByProviderIdentity(provider, providerUserID string) (*models.OAuthAccount, error) {
	var account models.OAuthAccount
	err := r.db.First(&account, "provider = ? AND provider_user_id = ?", provider, providerUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormOAuthAccountRepository) GetByUserAndProvider(userID uuid.UUID, provider string) (*models.OAuthAccount, error) {
	var account models.OAuthAccount
	err := r.db.First(&account, "user_id = ? AND provider = ?", userID, provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormOAuthAccountRepository) Create(account *models.OAuthAccount) error {
	return r.db.Create(account).Error
}

func (r *gormOAuthAccountRepository) Update(account *models.OAuthAccount) error {
	return r.db.Save(account).Error
}
