package controllers

import (
	"strconv"

	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// requestMeta extracts client attribution for the audit trail.
func requestMeta(c *gin.Context) services.RequestMeta {
	meta := services.RequestMeta{}
	if ip := c.ClientIP(); ip != "" {
		meta.IPAddress = &ip
	}
	if ua := c.GetHeader("User-Agent"); ua != "" {
		meta.UserAgent = &ua
	}
	return meta
}

// pagination reads offset/limit query params with sane bounds.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

func boolQuery(c *gin.Context, name string) bool {
	return c.Query(name) == "true"
}
