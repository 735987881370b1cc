package services

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/alexedwards/argon2id"
	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
)

// argonParams are process-wide; verification cost is meant to dominate
// brute-force economics.
var argonParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// AuthService owns registration, password verification and the account
// lockout guard.
type AuthService struct {
	users repositories.UserRepository
	cfg   *config.SecurityConfig
}

func NewAuthService(users repositories.UserRepository, cfg *config.SecurityConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

func (s *AuthService) Register(email, password, fullName string) (*models.User, error) {
	exists, err := s.users.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	if err := s.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(password, argonParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: &hash,
		FullName:     fullName,
		IsActive:     true,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies email/password under the lockout policy. Counter
// mutations are persisted even on failed calls: a wrong password spends an
// attempt no matter what.
func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()

	if user.IsLocked {
		if user.LastFailedLogin != nil {
			lockoutUntil := user.LastFailedLogin.Add(s.cfg.LockoutWindow())
			if now.Before(lockoutUntil) {
				remaining := int(math.Ceil(lockoutUntil.Sub(now).Minutes()))
				return nil, &LockedError{Remaining: remaining}
			}
		}
		// Window elapsed, clear the lock and fall through to verification.
		user.IsLocked = false
		user.FailedLoginAttempts = 0
	}

	if user.PasswordHash == nil || !verifyPassword(password, *user.PasswordHash) {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		if user.FailedLoginAttempts >= s.cfg.MaxLoginAttempts {
			user.IsLocked = true
			if err := s.users.Update(user); err != nil {
				return nil, err
			}
			return nil, &LockedError{}
		}

		if err := s.users.Update(user); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.IsLocked = false
	user.LastLogin = &now
	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

func verifyPassword(password, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false
	}
	return match
}

// ValidatePasswordStrength enforces the registration password policy.
func (s *AuthService) ValidatePasswordStrength(password string) error {
	if len(password) < s.cfg.PasswordMinLength {
		return &PasswordPolicyError{
			Reason: fmt.Sprintf("password must be at least %d characters long", s.cfg.PasswordMinLength),
		}
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("!@#$%^&*()_+-=[]{}|;:,.<>?", r):
			special = true
		}
	}

	switch {
	case !upper:
		return &PasswordPolicyError{Reason: "password must contain at least one uppercase letter"}
	case !lower:
		return &PasswordPolicyError{Reason: "password must contain at least one lowercase letter"}
	case !digit:
		return &PasswordPolicyError{Reason: "password must contain at least one digit"}
	case !special:
		return &PasswordPolicyError{Reason: "password must contain at least one special character"}
	}
	return nil
}
