package services_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

type mockCollectionRepo struct {
	createFunc             func(collection *models.Collection) error
	getByIDAndUserFunc     func(id, userID uuid.UUID) (*models.Collection, error)
	getActiveByIDAndUser   func(id, userID uuid.UUID) (*models.Collection, error)
	listByUserFunc         func(userID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Collection, error)
	updateFunc             func(collection *models.Collection) error
	hardDeleteFunc         func(id uuid.UUID) error
	countActiveRecordsFunc func(collectionID uuid.UUID) (int64, error)

	records repositories.RecordRepository
}

func (m *mockCollectionRepo) Create(collection *models.Collection) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(collection)
}

func (m *mockCollectionRepo) GetByIDAndUser(id, userID uuid.UUID) (*models.Collection, error) {
	if m.getByIDAndUserFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByIDAndUserFunc(id, userID)
}

func (m *mockCollectionRepo) GetActiveByIDAndUser(id, userID uuid.UUID) (*models.Collection, error) {
	if m.getActiveByIDAndUser == nil {
		return nil, errors.New("not implemented")
	}
	return m.getActiveByIDAndUser(id, userID)
}

func (m *mockCollectionRepo) ListByUser(userID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Collection, error) {
	if m.listByUserFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listByUserFunc(userID, offset, limit, includeDeleted)
}

func (m *mockCollectionRepo) Update(collection *models.Collection) error {
	if m.updateFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateFunc(collection)
}

func (m *mockCollectionRepo) HardDelete(id uuid.UUID) error {
	if m.hardDeleteFunc == nil {
		return errors.New("not implemented")
	}
	return m.hardDeleteFunc(id)
}

func (m *mockCollectionRepo) CountActiveRecords(collectionID uuid.UUID) (int64, error) {
	if m.countActiveRecordsFunc == nil {
		return 0, errors.New("not implemented")
	}
	return m.countActiveRecordsFunc(collectionID)
}

func (m *mockCollectionRepo) InTx(fn func(repositories.CollectionRepository, repositories.RecordRepository) error) error {
	return fn(m, m.records)
}

type mockRecordRepo struct {
	createFunc      func(record *models.Record) error
	createBatchFunc func(records []*models.Record) error
	getFunc         func(id, collectionID uuid.UUID) (*models.Record, error)
	listFunc        func(collectionID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Record, error)
	updateFunc      func(record *models.Record) error
	hardDeleteFunc  func(id uuid.UUID) error
}

func (m *mockRecordRepo) Create(record *models.Record) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(record)
}

func (m *mockRecordRepo) CreateBatch(records []*models.Record) error {
	if m.createBatchFunc == nil {
		return errors.New("not implemented")
	}
	return m.createBatchFunc(records)
}

func (m *mockRecordRepo) GetByIDAndCollection(id, collectionID uuid.UUID) (*models.Record, error) {
	if m.getFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getFunc(id, collectionID)
}

func (m *mockRecordRepo) ListByCollection(collectionID uuid.UUID, offset, limit int, includeDeleted bool) ([]models.Record, error) {
	if m.listFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listFunc(collectionID, offset, limit, includeDeleted)
}

func (m *mockRecordRepo) Update(record *models.Record) error {
	if m.updateFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateFunc(record)
}

func (m *mockRecordRepo) HardDelete(id uuid.UUID) error {
	if m.hardDeleteFunc == nil {
		return errors.New("not implemented")
	}
	return m.hardDeleteFunc(id)
}

type mockActivityRepo struct {
	entries []*models.ActivityLog
}

func (m *mockActivityRepo) Create(entry *models.ActivityLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockActivityRepo) ListByUser(userID uuid.UUID, filter repositories.ActivityLogFilter) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func newTestImportService(collections *mockCollectionRepo) (*services.ImportService, *mockActivityRepo) {
	activityRepo := &mockActivityRepo{}
	activity := services.NewActivityService(activityRepo)
	return services.NewImportService(collections, activity, nil), activityRepo
}

const sampleCSV = `Name,Age,Joined Date
Alice,30,2023-01-15
Bob,25,2023-02-20
Carol,41,2023-03-08
`

func TestImportService_Preview_CSV(t *testing.T) {
	svc, _ := newTestImportService(&mockCollectionRepo{})

	preview, err := svc.Preview("employee_data.csv", []byte(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, "Employee Data", preview.FolderName)
	assert.Equal(t, 3, preview.TotalRows)
	assert.Equal(t, 3, preview.TotalColumns)
	require.Len(t, preview.Preview, 3)

	fields, ok := preview.Schema["fields"].([]interface{})
	require.True(t, ok)
	require.Len(t, fields, 3)

	byName := map[string]string{}
	for _, f := range fields {
		field := f.(map[string]interface{})
		byName[field["name"].(string)] = field["type"].(string)
	}
	assert.Equal(t, "text", byName["name"])
	assert.Equal(t, "number", byName["age"])
	assert.Equal(t, "date", byName["joined_date"])

	first := preview.Preview[0]
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, float64(30), first["age"])
	assert.Equal(t, "2023-01-15", first["joined_date"])
}

func TestImportService_Preview_CapsAtFiveRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("value\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "row-%d\n", i)
	}

	svc, _ := newTestImportService(&mockCollectionRepo{})

	preview, err := svc.Preview("many.csv", []byte(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, 20, preview.TotalRows)
	assert.Len(t, preview.Preview, 5)
}

func TestImportService_Preview_XLSX(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	require.NoError(t, workbook.SetSheetRow(sheet, "A1", &[]interface{}{"Product", "Price"}))
	require.NoError(t, workbook.SetSheetRow(sheet, "A2", &[]interface{}{"Widget", 9.99}))
	require.NoError(t, workbook.SetSheetRow(sheet, "A3", &[]interface{}{"Gadget", 24.5}))

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))

	svc, _ := newTestImportService(&mockCollectionRepo{})

	preview, err := svc.Preview("catalog.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, preview.TotalRows)
	assert.Equal(t, 2, preview.TotalColumns)

	first := preview.Preview[0]
	assert.Equal(t, "Widget", first["product"])
	assert.Equal(t, 9.99, first["price"])
}

func TestImportService_Preview_RejectsUnsupportedExtension(t *testing.T) {
	svc, _ := newTestImportService(&mockCollectionRepo{})

	_, err := svc.Preview("notes.txt", []byte("a,b\n1,2\n"))
	assert.ErrorIs(t, err, services.ErrUnsupportedFileType)
}

func TestImportService_Preview_RejectsOversizedFile(t *testing.T) {
	svc, _ := newTestImportService(&mockCollectionRepo{})

	big := make([]byte, services.MaxImportFileSize+1)
	_, err := svc.Preview("big.csv", big)
	assert.ErrorIs(t, err, services.ErrFileTooLarge)
}

func TestImportService_Import_BatchesRecords(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id,value\n")
	for i := 0; i < 2500; i++ {
		fmt.Fprintf(&sb, "%d,item-%d\n", i, i)
	}

	var batchSizes []int
	records := &mockRecordRepo{
		createBatchFunc: func(batch []*models.Record) error {
			batchSizes = append(batchSizes, len(batch))
			return nil
		},
	}
	collections := &mockCollectionRepo{
		createFunc: func(c *models.Collection) error {
			c.ID = uuid.New()
			return nil
		},
		records: records,
	}

	svc, activityRepo := newTestImportService(collections)
	userID := uuid.New()

	result, err := svc.Import(userID, "inventory.csv", []byte(sb.String()), "", "", nil, services.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2500, result.ItemsCreated)
	assert.Equal(t, "Inventory", result.FolderName)
	assert.Equal(t, []int{1000, 1000, 500}, batchSizes)

	require.Len(t, activityRepo.entries, 1)
	entry := activityRepo.entries[0]
	assert.Equal(t, "created", entry.Action)
	assert.Equal(t, "collection", entry.EntityType)
	assert.Equal(t, 2500, entry.Changes["items_imported"])
}

func TestImportService_Import_SchemaOverride(t *testing.T) {
	var created *models.Collection
	records := &mockRecordRepo{
		createBatchFunc: func(batch []*models.Record) error { return nil },
	}
	collections := &mockCollectionRepo{
		createFunc: func(c *models.Collection) error {
			created = c
			return nil
		},
		records: records,
	}

	svc, _ := newTestImportService(collections)

	override := datatypes.JSONMap{
		"fields": []interface{}{
			map[string]interface{}{"name": "full_name", "type": "text", "label": "Full Name", "required": false},
			map[string]interface{}{"name": "years", "type": "number", "label": "Years", "required": false},
			map[string]interface{}{"name": "joined", "type": "date", "label": "Joined", "required": false},
		},
	}

	_, err := svc.Import(uuid.New(), "people.csv", []byte(sampleCSV), "Team", "imported team roster", override, services.RequestMeta{})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Team", created.Name)
	assert.Equal(t, override, created.Schema)
	require.NotNil(t, created.Description)
	assert.Equal(t, "imported team roster", *created.Description)
}

func TestImportService_Import_RejectsInvalidOverride(t *testing.T) {
	svc, _ := newTestImportService(&mockCollectionRepo{})

	cases := []struct {
		name   string
		schema datatypes.JSONMap
	}{
		{"no fields", datatypes.JSONMap{"fields": []interface{}{}}},
		{"empty label", datatypes.JSONMap{"fields": []interface{}{
			map[string]interface{}{"name": "a", "type": "text", "label": "  "},
		}}},
		{"duplicate labels", datatypes.JSONMap{"fields": []interface{}{
			map[string]interface{}{"name": "a", "type": "text", "label": "Name"},
			map[string]interface{}{"name": "b", "type": "text", "label": "name"},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Import(uuid.New(), "people.csv", []byte(sampleCSV), "Team", "", tc.schema, services.RequestMeta{})
			var schemaErr *services.SchemaError
			assert.ErrorAs(t, err, &schemaErr)
		})
	}
}

func TestImportService_Import_EmptyFile(t *testing.T) {
	svc, _ := newTestImportService(&mockCollectionRepo{})

	_, err := svc.Import(uuid.New(), "empty.csv", []byte(""), "", "", nil, services.RequestMeta{})
	assert.ErrorIs(t, err, services.ErrFileEmpty)
}
