package routes

import (
	"github.com/bharthraj1412/nexora/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(router *gin.RouterGroup, authController *controllers.AuthController, authMiddleware gin.HandlerFunc) {
	// Public auth endpoints
	// POST /auth/register/request-otp - Request OTP for registration
	router.POST("/register/request-otp", authController.RequestRegistrationOTP)

	// POST /auth/register/verify - Complete registration with OTP
	router.POST("/register/verify", authController.RegisterVerify)

	// POST /auth/login - Login with email and password
	router.POST("/login", authController.Login)

	// POST /auth/login/request-otp - Request OTP for passwordless login
	router.POST("/login/request-otp", authController.RequestLoginOTP)

	// POST /auth/login/verify-otp - Login with OTP
	router.POST("/login/verify-otp", authController.LoginVerifyOTP)

	// GET /auth/oauth/google - Start the Google OAuth flow
	router.GET("/oauth/google", authController.GoogleLogin)

	// GET /auth/oauth/google/callback - Handle the OAuth callback
	router.GET("/oauth/google/callback", authController.GoogleCallback)

	// POST /auth/refresh - Rotate the refresh token
	router.POST("/refresh", authController.Refresh)

	// POST /auth/logout - Revoke the refresh token
	router.POST("/logout", authController.Logout)

	// Protected auth endpoints (require valid JWT)
	protected := router.Group("")
	protected.Use(authMiddleware)
	{
		// GET /auth/me - Current user info
		protected.GET("/me", authController.Me)
	}
}
