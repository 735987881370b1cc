package controllers

import (
	"net/http"

	"github.com/bharthraj1412/nexora/internal/middleware"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
)

// ActivityController serves the current user's audit trail.
type ActivityController struct {
	activity *services.ActivityService
}

func NewActivityController(activity *services.ActivityService) *ActivityController {
	return &ActivityController{activity: activity}
}

// List - GET /activity
func (ac *ActivityController) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	entries, err := ac.activity.List(user.ID, repositories.ActivityLogFilter{
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": entries})
}
