package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/controllers"
	"github.com/bharthraj1412/nexora/internal/database"
	"github.com/bharthraj1412/nexora/internal/mailer"
	"github.com/bharthraj1412/nexora/internal/middleware"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/bharthraj1412/nexora/internal/routes"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := database.Connect(&cfg.Database); err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	if err := database.RunMigrations(&cfg.Database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	oauthRepo := repositories.NewOAuthAccountRepository(db)
	collectionRepo := repositories.NewCollectionRepository(db)
	recordRepo := repositories.NewRecordRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	// Initialize services
	mail := mailer.NewSMTPMailer(cfg.SMTP)
	activityService := services.NewActivityService(activityRepo)
	authService := services.NewAuthService(userRepo, &cfg.Security)
	otpService := services.NewOTPService(otpRepo, mail, &cfg.Security)
	tokenService := services.NewTokenService(sessionRepo, userRepo, &cfg.JWT)
	oauthService := services.NewGoogleOAuthService(userRepo, oauthRepo, &cfg.OAuth)
	collectionService := services.NewCollectionService(collectionRepo, activityService)
	recordService := services.NewRecordService(recordRepo, collectionRepo, activityService)
	importService := services.NewImportService(collectionRepo, activityService, &cfg.Import)

	// Initialize controllers
	authController := controllers.NewAuthController(authService, otpService, tokenService, oauthService, userRepo, mail, cfg)
	collectionController := controllers.NewCollectionController(collectionService)
	recordController := controllers.NewRecordController(recordService)
	importController := controllers.NewImportController(importService)
	activityController := controllers.NewActivityController(activityService)

	authMiddleware := middleware.JWTAuthMiddleware(tokenService, userRepo)

	// Setup router
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(corsMiddleware())
	routes.SetupRoutes(
		router,
		authController,
		collectionController,
		recordController,
		importController,
		activityController,
		authMiddleware,
	)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	go func() {
		log.Printf("Server running on %s", addr)
		if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	waitForShutdown()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down server...")
}
