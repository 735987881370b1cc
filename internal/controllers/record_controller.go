package controllers

import (
	"errors"
	"net/http"

	"github.com/bharthraj1412/nexora/internal/middleware"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RecordController handles /collections/:id/records endpoints.
type RecordController struct {
	records *services.RecordService
}

func NewRecordController(records *services.RecordService) *RecordController {
	return &RecordController{records: records}
}

type recordRequest struct {
	Data datatypes.JSONMap `json:"data" binding:"required"`
}

// Create - POST /collections/:id/records
func (rc *RecordController) Create(c *gin.Context) {
	user, collectionID, ok := rc.scope(c)
	if !ok {
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := rc.records.Create(user.ID, collectionID, req.Data, requestMeta(c))
	if err != nil {
		rc.recordError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// List - GET /collections/:id/records
func (rc *RecordController) List(c *gin.Context) {
	user, collectionID, ok := rc.scope(c)
	if !ok {
		return
	}

	offset, limit := pagination(c)
	records, err := rc.records.List(user.ID, collectionID, offset, limit, boolQuery(c, "include_deleted"))
	if err != nil {
		rc.recordError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// Get - GET /collections/:id/records/:recordId
func (rc *RecordController) Get(c *gin.Context) {
	user, collectionID, ok := rc.scope(c)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(c.Param("recordId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	record, err := rc.records.Get(user.ID, collectionID, recordID)
	if err != nil {
		rc.recordError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Update - PUT /collections/:id/records/:recordId
func (rc *RecordController) Update(c *gin.Context) {
	user, collectionID, ok := rc.scope(c)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(c.Param("recordId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := rc.records.Update(user.ID, collectionID, recordID, req.Data, requestMeta(c))
	if err != nil {
		rc.recordError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete - DELETE /collections/:id/records/:recordId
func (rc *RecordController) Delete(c *gin.Context) {
	user, collectionID, ok := rc.scope(c)
	if !ok {
		return
	}

	recordID, err := uuid.Parse(c.Param("recordId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record id"})
		return
	}

	if err := rc.records.Delete(user.ID, collectionID, recordID, boolQuery(c, "hard_delete"), requestMeta(c)); err != nil {
		rc.recordError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

// scope resolves the current user and the collection path param.
func (rc *RecordController) scope(c *gin.Context) (*models.User, uuid.UUID, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, uuid.Nil, false
	}

	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection id"})
		return nil, uuid.Nil, false
	}
	return user, collectionID, true
}

func (rc *RecordController) recordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCollectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
	case errors.Is(err, services.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
