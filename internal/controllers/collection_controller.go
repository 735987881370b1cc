package controllers

import (
	"errors"
	"net/http"

	"github.com/bharthraj1412/nexora/internal/middleware"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CollectionController handles the /collections endpoints.
type CollectionController struct {
	collections *services.CollectionService
}

func NewCollectionController(collections *services.CollectionService) *CollectionController {
	return &CollectionController{collections: collections}
}

type createCollectionRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description *string           `json:"description"`
	Schema      datatypes.JSONMap `json:"schema"`
}

type updateCollectionRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Schema      datatypes.JSONMap `json:"schema"`
}

// Create - POST /collections
func (cc *CollectionController) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection, err := cc.collections.Create(user.ID, req.Name, req.Description, req.Schema, requestMeta(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, collection)
}

// List - GET /collections
func (cc *CollectionController) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	collections, err := cc.collections.List(user.ID, offset, limit, boolQuery(c, "include_deleted"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

// Get - GET /collections/:id
func (cc *CollectionController) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection id"})
		return
	}

	collection, err := cc.collections.Get(user.ID, id)
	if err != nil {
		cc.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// Update - PUT /collections/:id
func (cc *CollectionController) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection id"})
		return
	}

	var req updateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection, err := cc.collections.Update(user.ID, id, services.CollectionUpdate{
		Name:        req.Name,
		Description: req.Description,
		Schema:      req.Schema,
	}, requestMeta(c))
	if err != nil {
		cc.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// Delete - DELETE /collections/:id (soft; ?hard_delete=true removes the row)
func (cc *CollectionController) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid collection id"})
		return
	}

	if err := cc.collections.Delete(user.ID, id, boolQuery(c, "hard_delete"), requestMeta(c)); err != nil {
		cc.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}

func (cc *CollectionController) collectionError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrCollectionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
