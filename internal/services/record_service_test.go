package services_test

import (
	"testing"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestRecordService(records *mockRecordRepo, collections *mockCollectionRepo) (*services.RecordService, *mockActivityRepo) {
	activityRepo := &mockActivityRepo{}
	activity := services.NewActivityService(activityRepo)
	return services.NewRecordService(records, collections, activity), activityRepo
}

func ownedCollectionRepo(collection *models.Collection) *mockCollectionRepo {
	return &mockCollectionRepo{
		getActiveByIDAndUser: func(id, userID uuid.UUID) (*models.Collection, error) {
			if collection != nil && id == collection.ID && userID == collection.UserID {
				return collection, nil
			}
			return nil, nil
		},
	}
}

func TestRecordService_Create_RequiresOwnedCollection(t *testing.T) {
	collection := &models.Collection{ID: uuid.New(), UserID: uuid.New()}
	records := &mockRecordRepo{
		createFunc: func(r *models.Record) error {
			r.ID = uuid.New()
			return nil
		},
	}
	svc, activityRepo := newTestRecordService(records, ownedCollectionRepo(collection))

	data := datatypes.JSONMap{"name": "Alice"}
	record, err := svc.Create(collection.UserID, collection.ID, data, services.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, collection.ID, record.CollectionID)

	require.Len(t, activityRepo.entries, 1)
	assert.Equal(t, "record", activityRepo.entries[0].EntityType)

	// Another user cannot write into the same collection.
	_, err = svc.Create(uuid.New(), collection.ID, data, services.RequestMeta{})
	assert.ErrorIs(t, err, services.ErrCollectionNotFound)
}

func TestRecordService_Create_SoftDeletedCollectionRejected(t *testing.T) {
	svc, _ := newTestRecordService(&mockRecordRepo{}, ownedCollectionRepo(nil))

	_, err := svc.Create(uuid.New(), uuid.New(), datatypes.JSONMap{}, services.RequestMeta{})
	assert.ErrorIs(t, err, services.ErrCollectionNotFound)
}

func TestRecordService_Update_AuditsOldAndNew(t *testing.T) {
	collection := &models.Collection{ID: uuid.New(), UserID: uuid.New()}
	existing := &models.Record{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		Data:         datatypes.JSONMap{"name": "Alice"},
	}
	records := &mockRecordRepo{
		getFunc: func(id, collectionID uuid.UUID) (*models.Record, error) {
			return existing, nil
		},
		updateFunc: func(r *models.Record) error { return nil },
	}
	svc, activityRepo := newTestRecordService(records, ownedCollectionRepo(collection))

	newData := datatypes.JSONMap{"name": "Bob"}
	updated, err := svc.Update(collection.UserID, collection.ID, existing.ID, newData, services.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.Data["name"])

	require.Len(t, activityRepo.entries, 1)
	changes := activityRepo.entries[0].Changes
	assert.NotNil(t, changes["old"])
	assert.NotNil(t, changes["new"])
}

func TestRecordService_Delete_Soft(t *testing.T) {
	collection := &models.Collection{ID: uuid.New(), UserID: uuid.New()}
	existing := &models.Record{ID: uuid.New(), CollectionID: collection.ID}
	var updated *models.Record
	records := &mockRecordRepo{
		getFunc: func(id, collectionID uuid.UUID) (*models.Record, error) {
			return existing, nil
		},
		updateFunc: func(r *models.Record) error {
			updated = r
			return nil
		},
	}
	svc, _ := newTestRecordService(records, ownedCollectionRepo(collection))

	err := svc.Delete(collection.UserID, collection.ID, existing.ID, false, services.RequestMeta{})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsDeleted)
	assert.NotNil(t, updated.DeletedAt)
}

func TestRecordService_Get_UnknownRecord(t *testing.T) {
	collection := &models.Collection{ID: uuid.New(), UserID: uuid.New()}
	records := &mockRecordRepo{
		getFunc: func(id, collectionID uuid.UUID) (*models.Record, error) {
			return nil, nil
		},
	}
	svc, _ := newTestRecordService(records, ownedCollectionRepo(collection))

	_, err := svc.Get(collection.UserID, collection.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrRecordNotFound)
}
