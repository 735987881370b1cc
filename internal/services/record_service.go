package services

import (
	"errors"
	"time"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrRecordNotFound = errors.New("record not found")

type RecordService struct {
	records     repositories.RecordRepository
	collections repositories.CollectionRepository
	activity    *ActivityService
}

func NewRecordService(records repositories.RecordRepository, collections repositories.CollectionRepository, activity *ActivityService) *RecordService {
	return &RecordService{records: records, collections: collections, activity: activity}
}

// ownedCollection resolves collectionID only when it belongs to userID and
// is not soft-deleted. Every record operation goes through this gate.
func (s *RecordService) ownedCollection(userID, collectionID uuid.UUID) (*models.Collection, error) {
	collection, err := s.collections.GetActiveByIDAndUser(collectionID, userID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}
	return collection, nil
}

func (s *RecordService) Create(userID, collectionID uuid.UUID, data datatypes.JSONMap, meta RequestMeta) (*models.Record, error) {
	collection, err := s.ownedCollection(userID, collectionID)
	if err != nil {
		return nil, err
	}

	record := &models.Record{
		CollectionID: collection.ID,
		Data:         data,
	}
	if err := s.records.Create(record); err != nil {
		return nil, err
	}

	s.activity.Record(userID, "created", "record", record.ID.String(),
		datatypes.JSONMap{"collection_id": collection.ID.String()}, meta)
	return record, nil
}

func (s *RecordService) List(userID, collectionID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Record, error) {
	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return nil, err
	}
	return s.records.ListByCollection(collectionID, offset, limit, includeDeleted)
}

func (s *RecordService) Get(userID, collectionID, recordID uuid.UUID) (*models.Record, error) {
	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return nil, err
	}

	record, err := s.records.GetByIDAndCollection(recordID, collectionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

func (s *RecordService) Update(userID, collectionID, recordID uuid.UUID, data datatypes.JSONMap, meta RequestMeta) (*models.Record, error) {
	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return nil, err
	}

	record, err := s.records.GetByIDAndCollection(recordID, collectionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	oldData := record.Data
	record.Data = data
	record.UpdatedAt = time.Now().UTC()
	if err := s.records.Update(record); err != nil {
		return nil, err
	}

	s.activity.Record(userID, "updated", "record", record.ID.String(),
		datatypes.JSONMap{"old": oldData, "new": data}, meta)
	return record, nil
}

func (s *RecordService) Delete(userID, collectionID, recordID uuid.UUID, hardDelete bool, meta RequestMeta) error {
	if _, err := s.ownedCollection(userID, collectionID); err != nil {
		return err
	}

	record, err := s.records.GetByIDAndCollection(recordID, collectionID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrRecordNotFound
	}

	if hardDelete {
		if err := s.records.HardDelete(record.ID); err != nil {
			return err
		}
	} else {
		now := time.Now().UTC()
		record.IsDeleted = true
		record.DeletedAt = &now
		if err := s.records.Update(record); err != nil {
			return err
		}
	}

	s.activity.Record(userID, "deleted", "record", record.ID.String(),
		datatypes.JSONMap{"hard_delete": hardDelete}, meta)
	return nil
}
