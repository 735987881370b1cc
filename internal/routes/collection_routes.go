package routes

import (
	"github.com/bharthraj1412/nexora/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterCollectionRoutes(router *gin.RouterGroup, collectionController *controllers.CollectionController, recordController *controllers.RecordController) {
	// Collection CRUD
	router.POST("", collectionController.Create)
	router.GET("", collectionController.List)
	router.GET("/:id", collectionController.Get)
	router.PUT("/:id", collectionController.Update)
	router.DELETE("/:id", collectionController.Delete)

	// Records nested under a collection
	router.POST("/:id/records", recordController.Create)
	router.GET("/:id/records", recordController.List)
	router.GET("/:id/records/:recordId", recordController.Get)
	router.PUT("/:id/records/:recordId", recordController.Update)
	router.DELETE("/:id/records/:recordId", recordController.Delete)
}
