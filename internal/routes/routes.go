package routes

import (
	"github.com/bharthraj1412/nexora/internal/controllers"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers all application routes.
func SetupRoutes(
	router *gin.Engine,
	authController *controllers.AuthController,
	collectionController *controllers.CollectionController,
	recordController *controllers.RecordController,
	importController *controllers.ImportController,
	activityController *controllers.ActivityController,
	authMiddleware gin.HandlerFunc,
) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/")

	// Auth routes: /auth/*
	authGroup := api.Group("/auth")
	RegisterAuthRoutes(authGroup, authController, authMiddleware)

	// Collection and record routes: /collections/*
	collectionsGroup := api.Group("/collections")
	collectionsGroup.Use(authMiddleware)
	RegisterCollectionRoutes(collectionsGroup, collectionController, recordController)

	// Import routes: /import/*
	importGroup := api.Group("/import")
	importGroup.Use(authMiddleware)
	{
		importGroup.POST("/preview", importController.Preview)
		importGroup.POST("/upload", importController.Upload)
	}

	// Activity trail: /activity
	activityGroup := api.Group("/activity")
	activityGroup.Use(authMiddleware)
	{
		activityGroup.GET("", activityController.List)
	}
}
