package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
)

const refreshTokenBytes = 48

// AccessClaims is the payload of a signed access token. TokenType guards
// against a refresh token being presented where an access token is expected.
type AccessClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService mints access tokens and manages refresh-token-backed
// sessions. Refresh tokens are single use: every refresh rotates the row.
type TokenService struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	cfg      *config.JWTConfig
}

func NewTokenService(sessions repositories.SessionRepository, users repositories.UserRepository, cfg *config.JWTConfig) *TokenService {
	return &TokenService{sessions: sessions, users: users, cfg: cfg}
}

// CreateSession issues an access/refresh token pair for user. Only the
// refresh token's hash is persisted; the plaintext is returned once.
func (s *TokenService) CreateSession(user *models.User, deviceInfo, ipAddress *string) (string, string, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := models.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	session := &models.Session{
		UserID:           user.ID,
		RefreshTokenHash: models.HashToken(refreshToken),
		DeviceInfo:       deviceInfo,
		IPAddress:        ipAddress,
		ExpiresAt:        now.Add(s.cfg.RefreshTokenTTL()),
		CreatedAt:        now,
		LastUsed:         now,
	}
	if err := s.sessions.Create(session); err != nil {
		return "", "", fmt.Errorf("store session: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Refresh rotates refreshToken: the old session row is deleted and a new one
// minted in the same transaction, so a replayed token always fails. The
// session's user is returned alongside the new pair.
func (s *TokenService) Refresh(refreshToken string) (string, string, *models.User, error) {
	hash := models.HashToken(refreshToken)

	var (
		accessToken string
		newRefresh  string
		sessionUser *models.User
		outcome     error
	)

	err := s.sessions.InTx(func(repo repositories.SessionRepository) error {
		session, err := repo.GetByTokenHash(hash)
		if err != nil {
			return err
		}
		if session == nil {
			outcome = ErrInvalidToken
			return nil
		}

		now := time.Now().UTC()
		if session.IsExpired(now) {
			if _, err := repo.DeleteByTokenHash(hash); err != nil {
				return err
			}
			outcome = ErrRefreshExpired
			return nil
		}

		user, err := s.users.GetByID(session.UserID)
		if err != nil {
			return err
		}
		if user == nil || !user.IsActive {
			outcome = ErrInvalidToken
			return nil
		}
		sessionUser = user

		// Zero rows deleted means a concurrent refresh won the race and
		// already rotated this token.
		deleted, err := repo.DeleteByTokenHash(hash)
		if err != nil {
			return err
		}
		if deleted == 0 {
			outcome = ErrInvalidToken
			return nil
		}

		accessToken, err = s.generateAccessToken(user)
		if err != nil {
			return err
		}
		newRefresh, err = models.GenerateSecureToken(refreshTokenBytes)
		if err != nil {
			return err
		}

		successor := &models.Session{
			UserID:           user.ID,
			RefreshTokenHash: models.HashToken(newRefresh),
			DeviceInfo:       session.DeviceInfo,
			IPAddress:        session.IPAddress,
			ExpiresAt:        now.Add(s.cfg.RefreshTokenTTL()),
			CreatedAt:        now,
			LastUsed:         now,
		}
		return repo.Create(successor)
	})
	if err != nil {
		return "", "", nil, fmt.Errorf("refresh session: %w", err)
	}
	if outcome != nil {
		return "", "", nil, outcome
	}
	return accessToken, newRefresh, sessionUser, nil
}

// VerifyAccessToken validates signature, expiry and token type.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke deletes the session backing refreshToken. Revoking an unknown or
// already-revoked token is not an error.
func (s *TokenService) Revoke(refreshToken string) error {
	_, err := s.sessions.DeleteByTokenHash(models.HashToken(refreshToken))
	return err
}

// RevokeAll drops every session for a user (used on account deactivation).
func (s *TokenService) RevokeAll(userID string) error {
	_, err := s.sessions.DeleteByUser(userID)
	return err
}

func (s *TokenService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IsAuthFailure reports whether err maps to a 401-class outcome.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrRefreshExpired)
}
