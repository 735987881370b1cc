package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/middleware"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (s *stubUserRepo) ExistsByEmail(email string) (bool, error)      { return false, nil }
func (s *stubUserRepo) Create(user *models.User) error                { return errors.New("not implemented") }
func (s *stubUserRepo) Update(user *models.User) error                { return errors.New("not implemented") }
func (s *stubUserRepo) Delete(id uuid.UUID) error                     { return errors.New("not implemented") }

type stubSessionRepo struct{}

func (s *stubSessionRepo) Create(session *models.Session) error                { return nil }
func (s *stubSessionRepo) GetByTokenHash(hash string) (*models.Session, error) { return nil, nil }
func (s *stubSessionRepo) DeleteByTokenHash(hash string) (int64, error)        { return 0, nil }
func (s *stubSessionRepo) DeleteByUser(userID string) (int64, error)           { return 0, nil }
func (s *stubSessionRepo) InTx(fn func(repositories.SessionRepository) error) error {
	return fn(s)
}

func newTestRig(t *testing.T, user *models.User) (*gin.Engine, *services.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.JWTConfig{
		Secret:                 "test-secret-key-minimum-32-characters-long",
		AccessTokenExpireMin:   15,
		RefreshTokenExpireDays: 7,
	}
	tokens := services.NewTokenService(&stubSessionRepo{}, &stubUserRepo{user: user}, cfg)

	router := gin.New()
	router.GET("/protected", middleware.JWTAuthMiddleware(tokens, &stubUserRepo{user: user}), func(c *gin.Context) {
		current, ok := middleware.CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": current.Email})
	})
	return router, tokens
}

func TestJWTAuthMiddleware_AllowsValidToken(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "user@example.com", IsActive: true}
	router, tokens := newTestRig(t, user)

	access, _, err := tokens.CreateSession(user, nil, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
}

func TestJWTAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	router, _ := newTestRig(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_RejectsMalformedToken(t *testing.T) {
	router, _ := newTestRig(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_RejectsInactiveUser(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "gone@example.com", IsActive: false}
	router, tokens := newTestRig(t, user)

	access, _, err := tokens.CreateSession(user, nil, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
