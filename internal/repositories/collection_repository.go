package repositories

import (
	"errors"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionRepository interface {
	Create(collection *models.Collection) error
	// GetByIDAndUser returns the collection only if it belongs to userID.
	GetByIDAndUser(id, userID uuid.UUID) (*models.Collection, error)
	// GetActiveByIDAndUser additionally requires the collection not to be
	// soft-deleted.
	GetActiveByIDAndUser(id, userID uuid.UUID) (*models.Collection, error)
	ListByUser(userID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Collection, error)
	Update(collection *models.Collection) error
	HardDelete(id uuid.UUID) error
	CountActiveRecords(collectionID uuid.UUID) (int64, error)
	InTx(fn func(CollectionRepository, RecordRepository) error) error
}

type gormCollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &gormCollectionRepository{db: db}
}

func (r *gormCollectionRepository) Create(collection *models.Collection) error {
	return r.db.Create(collection).Error
}

func (r *gormCollectionRepository) GetByIDAndUser(id, userID uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.First(&collection, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collection, nil
}

func (r *gormCollectionRepository) GetActiveByIDAndUser(id, userID uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.First(&collection, "id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collection, nil
}

func (r *gormCollectionRepository) ListByUser(userID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Collection, error) {
	query := r.db.Where("user_id = ?", userID)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var collections []models.Collection
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&collections).Error
	return collections, err
}

func (r *gormCollectionRepository) Update(collection *models.Collection) error {
	return r.db.Save(collection).Error
}

func (r *gormCollectionRepository) HardDelete(id uuid.UUID) error {
	return r.db.Delete(&models.Collection{}, "id = ?", id).Error
}

func (r *gormCollectionRepository) CountActiveRecords(collectionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Record{}).
		Where("collection_id = ? AND is_deleted = ?", collectionID, false).
		Count(&count).Error
	return count, err
}

func (r *gormCollectionRepository) InTx(fn func(CollectionRepository, RecordRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormCollectionRepository{db: tx}, &gormRecordRepository{db: tx})
	})
}
