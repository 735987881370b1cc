package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bharthraj1412/nexora/internal/middleware"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// ImportController handles CSV/Excel file import endpoints.
type ImportController struct {
	imports *services.ImportService
}

func NewImportController(imports *services.ImportService) *ImportController {
	return &ImportController{imports: imports}
}

// Preview - POST /import/preview
func (ic *ImportController) Preview(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	filename, content, ok := ic.readUpload(c)
	if !ok {
		return
	}

	preview, err := ic.imports.Preview(filename, content)
	if err != nil {
		ic.importError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Upload - POST /import/upload
func (ic *ImportController) Upload(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	filename, content, ok := ic.readUpload(c)
	if !ok {
		return
	}

	folderName := c.PostForm("folder_name")
	description := c.PostForm("description")

	var schema datatypes.JSONMap
	if raw := c.PostForm("schema"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &schema); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schema format"})
			return
		}
	}

	result, err := ic.imports.Import(user.ID, filename, content, folderName, description, schema, requestMeta(c))
	if err != nil {
		ic.importError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collection_id": result.CollectionID,
		"folder_name":   result.FolderName,
		"items_created": result.ItemsCreated,
		"message":       "Import completed successfully",
	})
}

// readUpload pulls the multipart file into memory, enforcing the size cap
// before the parser ever sees the bytes.
func (ic *ImportController) readUpload(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return "", nil, false
	}
	maxSize := ic.imports.MaxFileSize()
	if fileHeader.Size > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": services.ErrFileTooLarge.Error()})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", nil, false
	}
	return fileHeader.Filename, content, true
}

func (ic *ImportController) importError(c *gin.Context, err error) {
	var (
		parseErr  *services.ParseError
		schemaErr *services.SchemaError
	)
	switch {
	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnsupportedFileType),
		errors.Is(err, services.ErrFileEmpty),
		errors.As(err, &parseErr),
		errors.As(err, &schemaErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed"})
	}
}
