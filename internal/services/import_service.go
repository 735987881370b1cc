package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

const (
	// MaxImportFileSize caps uploads at 10 MB.
	MaxImportFileSize = 10 * 1024 * 1024

	importBatchSize = 1000
	previewRows     = 5
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type, only .csv and .xlsx are accepted")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrFileEmpty           = errors.New("file is empty or contains no data")
)

// ParseError wraps a file-format failure so the controller can map it to a
// client error instead of a server one.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "failed to parse file: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports an invalid caller-supplied schema override.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return e.Reason }

// ImportField describes one inferred (or renamed) column.
type ImportField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// ImportPreview is what the preview endpoint returns: inferred schema plus
// the first few converted rows.
type ImportPreview struct {
	FolderName   string              `json:"folder_name"`
	TotalRows    int                 `json:"total_rows"`
	TotalColumns int                 `json:"total_columns"`
	Schema       datatypes.JSONMap   `json:"schema"`
	Preview      []datatypes.JSONMap `json:"preview"`
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	CollectionID uuid.UUID `json:"collection_id"`
	FolderName   string    `json:"folder_name"`
	ItemsCreated int       `json:"items_created"`
}

type ImportService struct {
	collections repositories.CollectionRepository
	activity    *ActivityService
	cfg         *config.ImportConfig
}

// NewImportService builds the import pipeline; cfg may be nil, in which
// case the built-in size and batch limits apply.
func NewImportService(collections repositories.CollectionRepository, activity *ActivityService, cfg *config.ImportConfig) *ImportService {
	return &ImportService{collections: collections, activity: activity, cfg: cfg}
}

// MaxFileSize is the upload cap in bytes.
func (s *ImportService) MaxFileSize() int64 {
	if s.cfg != nil && s.cfg.MaxFileSizeMB > 0 {
		return int64(s.cfg.MaxFileSizeMB) * 1024 * 1024
	}
	return MaxImportFileSize
}

func (s *ImportService) batchSize() int {
	if s.cfg != nil && s.cfg.BatchSize > 0 {
		return s.cfg.BatchSize
	}
	return importBatchSize
}

// parsedFile is the format-independent view of an uploaded table.
type parsedFile struct {
	headers []string
	rows    [][]string
}

// Preview parses the file, infers a schema and returns stats plus the first
// rows. Nothing is written to the store.
func (s *ImportService) Preview(filename string, content []byte) (*ImportPreview, error) {
	parsed, err := s.parseFile(filename, content)
	if err != nil {
		return nil, err
	}

	fields := inferFields(parsed)

	limit := len(parsed.rows)
	if limit > previewRows {
		limit = previewRows
	}
	preview := make([]datatypes.JSONMap, 0, limit)
	for _, row := range parsed.rows[:limit] {
		if data := rowToRecord(row, fields); len(data) > 0 {
			preview = append(preview, data)
		}
	}

	return &ImportPreview{
		FolderName:   folderNameFromFilename(filename),
		TotalRows:    len(parsed.rows),
		TotalColumns: len(fields),
		Schema:       fieldsToSchema(fields),
		Preview:      preview,
	}, nil
}

// Import parses the file and creates the collection plus all its records in
// a single transaction, inserting in batches. schemaOverride, when non-nil,
// replaces the inferred schema (the caller may have renamed columns).
func (s *ImportService) Import(userID uuid.UUID, filename string, content []byte, folderName, description string, schemaOverride datatypes.JSONMap, meta RequestMeta) (*ImportResult, error) {
	parsed, err := s.parseFile(filename, content)
	if err != nil {
		return nil, err
	}

	fields := inferFields(parsed)
	schema := fieldsToSchema(fields)
	if schemaOverride != nil {
		if err := validateSchemaFields(schemaOverride); err != nil {
			return nil, err
		}
		schema = schemaOverride
	}

	if folderName == "" {
		folderName = folderNameFromFilename(filename)
	}

	records := make([]datatypes.JSONMap, 0, len(parsed.rows))
	for _, row := range parsed.rows {
		if data := rowToRecord(row, fields); len(data) > 0 {
			records = append(records, data)
		}
	}
	if len(records) == 0 {
		return nil, ErrFileEmpty
	}

	collection := &models.Collection{
		UserID: userID,
		Name:   folderName,
		Schema: schema,
	}
	if description != "" {
		collection.Description = &description
	}

	itemsCreated := 0
	err = s.collections.InTx(func(collections repositories.CollectionRepository, recordStore repositories.RecordRepository) error {
		if err := collections.Create(collection); err != nil {
			return err
		}

		limit := s.batchSize()
		batch := make([]*models.Record, 0, limit)
		for _, data := range records {
			batch = append(batch, &models.Record{CollectionID: collection.ID, Data: data})
			if len(batch) >= limit {
				if err := recordStore.CreateBatch(batch); err != nil {
					return err
				}
				itemsCreated += len(batch)
				batch = batch[:0]
			}
		}
		if len(batch) > 0 {
			if err := recordStore.CreateBatch(batch); err != nil {
				return err
			}
			itemsCreated += len(batch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(userID, "created", "collection", collection.ID.String(), datatypes.JSONMap{
		"source":         "file_import",
		"items_imported": itemsCreated,
		"folder_name":    collection.Name,
	}, meta)

	return &ImportResult{
		CollectionID: collection.ID,
		FolderName:   collection.Name,
		ItemsCreated: itemsCreated,
	}, nil
}

func (s *ImportService) parseFile(filename string, content []byte) (*parsedFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".csv" && ext != ".xlsx" {
		return nil, ErrUnsupportedFileType
	}
	if int64(len(content)) > s.MaxFileSize() {
		return nil, ErrFileTooLarge
	}

	var (
		parsed *parsedFile
		err    error
	)
	if ext == ".csv" {
		parsed, err = parseCSV(content)
	} else {
		parsed, err = parseXLSX(content)
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(parsed.headers) == 0 {
		return nil, ErrFileEmpty
	}
	return parsed, nil
}

func parseCSV(content []byte) (*parsedFile, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return &parsedFile{}, nil
	}
	return &parsedFile{headers: all[0], rows: all[1:]}, nil
}

func parseXLSX(content []byte) (*parsedFile, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return &parsedFile{}, nil
	}
	all, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return &parsedFile{}, nil
	}
	return &parsedFile{headers: all[0], rows: all[1:]}, nil
}

// inferFields builds a field per column, detecting number/date/text from the
// column's non-empty values.
func inferFields(parsed *parsedFile) []ImportField {
	fields := make([]ImportField, 0, len(parsed.headers))
	for i, header := range parsed.headers {
		label := strings.TrimSpace(header)
		name := strings.ToLower(label)
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, "-", "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}

		var values []string
		for _, row := range parsed.rows {
			if i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					values = append(values, v)
				}
			}
		}

		fields = append(fields, ImportField{
			Name:  name,
			Type:  detectFieldType(values),
			Label: label,
		})
	}
	return fields
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
}

func detectFieldType(values []string) string {
	if len(values) == 0 {
		return "text"
	}

	numeric := true
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		return "number"
	}

	for _, v := range values {
		if parseDate(v) == nil {
			return "text"
		}
	}
	return "date"
}

func parseDate(value string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// rowToRecord converts one raw row using the inferred fields; empty cells
// are omitted, unconvertible cells fall back to their string value.
func rowToRecord(row []string, fields []ImportField) datatypes.JSONMap {
	data := datatypes.JSONMap{}
	for i, field := range fields {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}

		switch field.Type {
		case "number":
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				data[field.Name] = n
			} else {
				data[field.Name] = value
			}
		case "date":
			if t := parseDate(value); t != nil {
				data[field.Name] = t.Format("2006-01-02")
			} else {
				data[field.Name] = value
			}
		default:
			data[field.Name] = value
		}
	}
	return data
}

func fieldsToSchema(fields []ImportField) datatypes.JSONMap {
	list := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		list = append(list, map[string]interface{}{
			"name":     f.Name,
			"type":     f.Type,
			"label":    f.Label,
			"required": f.Required,
		})
	}
	return datatypes.JSONMap{"fields": list}
}

func folderNameFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" {
		base = "imported data"
	}
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// validateSchemaFields checks a caller-supplied schema override: at least
// one field, no empty labels, labels unique ignoring case.
func validateSchemaFields(schema datatypes.JSONMap) error {
	raw, ok := schema["fields"].([]interface{})
	if !ok || len(raw) == 0 {
		return &SchemaError{Reason: "schema must have at least one field"}
	}

	seen := make(map[string]bool, len(raw))
	for _, entry := range raw {
		field, ok := entry.(map[string]interface{})
		if !ok {
			return &SchemaError{Reason: "invalid schema format"}
		}
		label, _ := field["label"].(string)
		label = strings.TrimSpace(label)
		if label == "" {
			return &SchemaError{Reason: "field names cannot be empty"}
		}
		key := strings.ToLower(label)
		if seen[key] {
			return &SchemaError{Reason: "field names must be unique"}
		}
		seen[key] = true
	}
	return nil
}
