package repositories

import (
	"errors"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordRepository interface {
	Create(record *models.Record) error
	CreateBatch(records []*models.Record) error
	GetByIDAndCollection(id, collectionID uuid.UUID) (*models.Record, error)
	ListByCollection(collectionID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Record, error)
	Update(record *models.Record) error
	HardDelete(id uuid.UUID) error
}

type gormRecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &gormRecordRepository{db: db}
}

func (r *gormRecordRepository) Create(record *models.Record) error {
	return r.db.Create(record).Error
}

func (r *gormRecordRepository) CreateBatch(records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(records).Error
}

func (r *gormRecordRepository) GetByIDAndCollection(id, collectionID uuid.UUID) (*models.Record, error) {
	var record models.Record
	err := r.db.First(&record, "id = ? AND collection_id = ?", id, collectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormRecordRepository) ListByCollection(collectionID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Record, error) {
	query := r.db.Where("collection_id = ?", collectionID)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var records []models.Record
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, err
}

func (r *gormRecordRepository) Update(record *models.Record) error {
	return r.db.Save(record).Error
}

func (r *gormRecordRepository) HardDelete(id uuid.UUID) error {
	return r.db.Delete(&models.Record{}, "id = ?", id).Error
}
