package services

import (
	"errors"
	"time"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrCollectionNotFound = errors.New("collection not found")

// CollectionWithCount pairs a collection with its live record count for
// list/detail responses.
type CollectionWithCount struct {
	models.Collection
	RecordCount int64 `json:"record_count"`
}

// CollectionUpdate holds the mutable fields; nil means "leave unchanged".
type CollectionUpdate struct {
	Name        *string
	Description *string
	Schema      datatypes.JSONMap
}

type CollectionService struct {
	collections repositories.CollectionRepository
	activity    *ActivityService
}

func NewCollectionService(collections repositories.CollectionRepository, activity *ActivityService) *CollectionService {
	return &CollectionService{collections: collections, activity: activity}
}

func (s *CollectionService) Create(userID uuid.UUID, name string, description *string, schema datatypes.JSONMap, meta RequestMeta) (*CollectionWithCount, error) {
	if schema == nil {
		schema = datatypes.JSONMap{}
	}
	collection := &models.Collection{
		UserID:      userID,
		Name:        name,
		Description: description,
		Schema:      schema,
	}
	if err := s.collections.Create(collection); err != nil {
		return nil, err
	}

	s.activity.Record(userID, "created", "collection", collection.ID.String(),
		datatypes.JSONMap{"name": collection.Name}, meta)

	return &CollectionWithCount{Collection: *collection}, nil
}

func (s *CollectionService) List(userID uuid.UUID, offset, limit int, includeDeleted bool) ([]CollectionWithCount, error) {
	collections, err := s.collections.ListByUser(userID, offset, limit, includeDeleted)
	if err != nil {
		return nil, err
	}

	result := make([]CollectionWithCount, 0, len(collections))
	for _, collection := range collections {
		count, err := s.collections.CountActiveRecords(collection.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, CollectionWithCount{Collection: collection, RecordCount: count})
	}
	return result, nil
}

func (s *CollectionService) Get(userID, id uuid.UUID) (*CollectionWithCount, error) {
	collection, err := s.collections.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}

	count, err := s.collections.CountActiveRecords(collection.ID)
	if err != nil {
		return nil, err
	}
	return &CollectionWithCount{Collection: *collection, RecordCount: count}, nil
}

func (s *CollectionService) Update(userID, id uuid.UUID, update CollectionUpdate, meta RequestMeta) (*CollectionWithCount, error) {
	collection, err := s.collections.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}

	changes := datatypes.JSONMap{}
	if update.Name != nil && *update.Name != collection.Name {
		changes["name"] = map[string]interface{}{"old": collection.Name, "new": *update.Name}
		collection.Name = *update.Name
	}
	if update.Description != nil {
		changes["description"] = map[string]interface{}{"old": collection.Description, "new": *update.Description}
		collection.Description = update.Description
	}
	if update.Schema != nil {
		changes["schema"] = map[string]interface{}{"old": collection.Schema, "new": update.Schema}
		collection.Schema = update.Schema
	}

	collection.UpdatedAt = time.Now().UTC()
	if err := s.collections.Update(collection); err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		s.activity.Record(userID, "updated", "collection", collection.ID.String(), changes, meta)
	}

	count, err := s.collections.CountActiveRecords(collection.ID)
	if err != nil {
		return nil, err
	}
	return &CollectionWithCount{Collection: *collection, RecordCount: count}, nil
}

// Delete soft-deletes by default; hardDelete removes the row (and, through
// the store's cascade, its records).
func (s *CollectionService) Delete(userID, id uuid.UUID, hardDelete bool, meta RequestMeta) error {
	collection, err := s.collections.GetByIDAndUser(id, userID)
	if err != nil {
		return err
	}
	if collection == nil {
		return ErrCollectionNotFound
	}

	if hardDelete {
		if err := s.collections.HardDelete(collection.ID); err != nil {
			return err
		}
	} else {
		now := time.Now().UTC()
		collection.IsDeleted = true
		collection.DeletedAt = &now
		if err := s.collections.Update(collection); err != nil {
			return err
		}
	}

	s.activity.Record(userID, "deleted", "collection", collection.ID.String(),
		datatypes.JSONMap{"hard_delete": hardDelete}, meta)
	return nil
}
