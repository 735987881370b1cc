package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/mailer"
	"github.com/bharthraj1412/nexora/internal/middleware"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
)

const refreshCookieMaxAge = 7 * 24 * 60 * 60

// AuthController handles registration, login, OTP and token endpoints.
type AuthController struct {
	auth   *services.AuthService
	otps   *services.OTPService
	tokens *services.TokenService
	oauth  *services.GoogleOAuthService
	users  repositories.UserRepository
	mail   mailer.Sender
	cfg    *config.Config
}

func NewAuthController(
	auth *services.AuthService,
	otps *services.OTPService,
	tokens *services.TokenService,
	oauth *services.GoogleOAuthService,
	users repositories.UserRepository,
	mail mailer.Sender,
	cfg *config.Config,
) *AuthController {
	return &AuthController{
		auth:   auth,
		otps:   otps,
		tokens: tokens,
		oauth:  oauth,
		users:  users,
		mail:   mail,
		cfg:    cfg,
	}
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type registerVerifyRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type otpVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RequestRegistrationOTP - POST /auth/register/request-otp
func (ac *AuthController) RequestRegistrationOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := ac.users.ExistsByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	code, err := ac.otps.RequestCode(req.Email, models.PurposeRegistration)
	if err != nil {
		ac.otpRequestError(c, err)
		return
	}

	ac.otpSentResponse(c, req.Email, code)
}

// RegisterVerify - POST /auth/register/verify
func (ac *AuthController) RegisterVerify(c *gin.Context) {
	var req registerVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.otps.VerifyCode(req.Email, req.Code, models.PurposeRegistration); err != nil {
		ac.otpVerifyError(c, err)
		return
	}

	user, err := ac.auth.Register(req.Email, req.Password, req.FullName)
	if err != nil {
		ac.registerError(c, err)
		return
	}

	// OTP verification proves ownership of the address.
	user.EmailVerified = true
	if err := ac.users.Update(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := ac.mail.Send(user.Email, "Welcome to NEXORA", mailer.WelcomeBody(user.FullName)); err != nil {
		log.Printf("warn: failed to send welcome email to %s: %v", user.Email, err)
	}

	ac.issueSession(c, user)
}

// Login - POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		var locked *services.LockedError
		switch {
		case errors.As(err, &locked):
			c.JSON(http.StatusForbidden, gin.H{"error": locked.Error()})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified. Please verify your email first."})
		return
	}

	ac.issueSession(c, user)
}

// RequestLoginOTP - POST /auth/login/request-otp
func (ac *AuthController) RequestLoginOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.GetByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account found with this email"})
		return
	}
	if !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
		return
	}

	code, err := ac.otps.RequestCode(req.Email, models.PurposeLogin)
	if err != nil {
		ac.otpRequestError(c, err)
		return
	}

	ac.otpSentResponse(c, req.Email, code)
}

// LoginVerifyOTP - POST /auth/login/verify-otp
func (ac *AuthController) LoginVerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.otps.VerifyCode(req.Email, req.Code, models.PurposeLogin); err != nil {
		ac.otpVerifyError(c, err)
		return
	}

	user, err := ac.users.GetByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ac.issueSession(c, user)
}

// GoogleLogin - GET /auth/oauth/google
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	state, err := models.GenerateSecureToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorization_url": ac.oauth.AuthorizationURL(state),
		"state":             state,
	})
}

// GoogleCallback - GET /auth/oauth/google/callback
func (ac *AuthController) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	tokens, err := ac.oauth.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	info, err := ac.oauth.FetchUserInfo(c.Request.Context(), tokens.AccessToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch user info"})
		return
	}

	user, err := ac.oauth.GetOrCreateUser(info, tokens)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ac.issueSession(c, user)
}

// Refresh - POST /auth/refresh
func (ac *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Fall back to the cookie set on login.
		if cookie, cookieErr := c.Cookie("refresh_token"); cookieErr == nil && cookie != "" {
			req.RefreshToken = cookie
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token is required"})
			return
		}
	}

	access, refresh, user, err := ac.tokens.Refresh(req.RefreshToken)
	if err != nil {
		if services.IsAuthFailure(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ac.setRefreshCookie(c, refresh)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          user,
	})
}

// Logout - POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if cookie, cookieErr := c.Cookie("refresh_token"); cookieErr == nil && cookie != "" {
			req.RefreshToken = cookie
		}
	}

	if req.RefreshToken != "" {
		if err := ac.tokens.Revoke(req.RefreshToken); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me - GET /auth/me
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// issueSession mints a token pair, sets the refresh cookie and writes the
// standard token response.
func (ac *AuthController) issueSession(c *gin.Context, user *models.User) {
	meta := requestMeta(c)
	access, refresh, err := ac.tokens.CreateSession(user, meta.UserAgent, meta.IPAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ac.setRefreshCookie(c, refresh)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          user,
	})
}

func (ac *AuthController) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetCookie("refresh_token", refreshToken, refreshCookieMaxAge, "/", "", false, true)
}

func (ac *AuthController) otpSentResponse(c *gin.Context, email, code string) {
	resp := gin.H{
		"message": "OTP sent successfully",
		"detail":  "Please check your email at " + email,
	}
	if ac.cfg.App.Debug {
		resp["code"] = code
	}
	c.JSON(http.StatusOK, resp)
}

func (ac *AuthController) otpRequestError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrRateLimited) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many OTP requests. Please try again later."})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (ac *AuthController) otpVerifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOTPNotFound),
		errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrOTPAttemptsExhausted),
		errors.Is(err, services.ErrInvalidOTP):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (ac *AuthController) registerError(c *gin.Context, err error) {
	var policy *services.PasswordPolicyError
	switch {
	case errors.Is(err, services.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
	case errors.As(err, &policy):
		c.JSON(http.StatusBadRequest, gin.H{"error": policy.Reason})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
