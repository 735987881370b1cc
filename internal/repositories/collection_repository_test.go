package repositories_test

import (
	"testing"
	"time"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seedCollection(t *testing.T, db *gorm.DB, user *models.User, name string) *models.Collection {
	t.Helper()

	collection := &models.Collection{
		UserID: user.ID,
		Name:   name,
		Schema: datatypes.JSONMap{},
	}
	require.NoError(t, db.Create(collection).Error)
	return collection
}

func TestCollectionRepository_GetActiveExcludesSoftDeleted(t *testing.T) {
	db := newTestDB(t)
	user := seedTestUser(t, db)
	repo := repositories.NewCollectionRepository(db)

	collection := seedCollection(t, db, user, "Contacts")

	got, err := repo.GetActiveByIDAndUser(collection.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	now := time.Now().UTC()
	collection.IsDeleted = true
	collection.DeletedAt = &now
	require.NoError(t, repo.Update(collection))

	got, err = repo.GetActiveByIDAndUser(collection.ID, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "soft-deleted collections are invisible to active lookups")

	// The plain getter still sees it, so restore/hard-delete can work.
	got, err = repo.GetByIDAndUser(collection.ID, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCollectionRepository_ListByUser_ScopedAndFiltered(t *testing.T) {
	db := newTestDB(t)
	owner := seedTestUser(t, db)
	other := &models.User{Email: "other@example.com", FullName: "Other", IsActive: true}
	require.NoError(t, db.Create(other).Error)

	repo := repositories.NewCollectionRepository(db)

	seedCollection(t, db, owner, "Visible")
	deleted := seedCollection(t, db, owner, "Hidden")
	now := time.Now().UTC()
	deleted.IsDeleted = true
	deleted.DeletedAt = &now
	require.NoError(t, repo.Update(deleted))

	seedCollection(t, db, other, "Foreign")

	active, err := repo.ListByUser(owner.ID, 0, 50, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Visible", active[0].Name)

	all, err := repo.ListByUser(owner.ID, 0, 50, true)
	require.NoError(t, err)
	assert.Len(t, all, 2, "include_deleted shows the owner's trashed rows, never foreign ones")
}

func TestCollectionRepository_CountActiveRecords(t *testing.T) {
	db := newTestDB(t)
	user := seedTestUser(t, db)
	collectionRepo := repositories.NewCollectionRepository(db)
	recordRepo := repositories.NewRecordRepository(db)

	collection := seedCollection(t, db, user, "Inventory")

	require.NoError(t, recordRepo.Create(&models.Record{
		CollectionID: collection.ID,
		Data:         datatypes.JSONMap{"sku": "A-1"},
	}))
	now := time.Now().UTC()
	require.NoError(t, recordRepo.Create(&models.Record{
		CollectionID: collection.ID,
		Data:         datatypes.JSONMap{"sku": "A-2"},
		IsDeleted:    true,
		DeletedAt:    &now,
	}))

	count, err := collectionRepo.CountActiveRecords(collection.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCollectionRepository_InTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	user := seedTestUser(t, db)
	repo := repositories.NewCollectionRepository(db)

	err := repo.InTx(func(collections repositories.CollectionRepository, records repositories.RecordRepository) error {
		if err := collections.Create(&models.Collection{
			UserID: user.ID,
			Name:   "Doomed",
			Schema: datatypes.JSONMap{},
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	list, err := repo.ListByUser(user.ID, 0, 50, true)
	require.NoError(t, err)
	assert.Empty(t, list, "failed transaction must leave nothing behind")
}
