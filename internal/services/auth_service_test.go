package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	getByIDFunc       func(id uuid.UUID) (*models.User, error)
	getByEmailFunc    func(email string) (*models.User, error)
	existsByEmailFunc func(email string) (bool, error)
	createFunc        func(user *models.User) error
	updateFunc        func(user *models.User) error
	deleteFunc        func(id uuid.UUID) error
}

func (m *mockUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	if m.getByIDFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByIDFunc(id)
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	if m.getByEmailFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByEmailFunc(email)
}

func (m *mockUserRepo) ExistsByEmail(email string) (bool, error) {
	if m.existsByEmailFunc == nil {
		return false, errors.New("not implemented")
	}
	return m.existsByEmailFunc(email)
}

func (m *mockUserRepo) Create(user *models.User) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(user)
}

func (m *mockUserRepo) Update(user *models.User) error {
	if m.updateFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateFunc(user)
}

func (m *mockUserRepo) Delete(id uuid.UUID) error {
	if m.deleteFunc == nil {
		return errors.New("not implemented")
	}
	return m.deleteFunc(id)
}

func hashTestPassword(t *testing.T, password string) *string {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	require.NoError(t, err)
	return &hash
}

func TestAuthService_Register_Success(t *testing.T) {
	var created *models.User
	repo := &mockUserRepo{
		existsByEmailFunc: func(email string) (bool, error) { return false, nil },
		createFunc: func(user *models.User) error {
			created = user
			return nil
		},
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	user, err := svc.Register("new@example.com", "Str0ng!pass", "New User")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "new@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.EmailVerified)

	require.NotNil(t, user.PasswordHash)
	match, err := argon2id.ComparePasswordAndHash("Str0ng!pass", *user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		existsByEmailFunc: func(email string) (bool, error) { return true, nil },
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	_, err := svc.Register("taken@example.com", "Str0ng!pass", "Someone")
	assert.ErrorIs(t, err, services.ErrUserExists)
}

func TestAuthService_ValidatePasswordStrength(t *testing.T) {
	svc := services.NewAuthService(&mockUserRepo{}, newTestSecurityConfig())

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng!pass", false},
		{"too short", "S7!a", true},
		{"no uppercase", "str0ng!pass", true},
		{"no lowercase", "STR0NG!PASS", true},
		{"no digit", "Strong!pass", true},
		{"no special", "Str0ngpass", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ValidatePasswordStrength(tc.password)
			if tc.wantErr {
				var policy *services.PasswordPolicyError
				assert.ErrorAs(t, err, &policy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "user@example.com",
		PasswordHash:        hashTestPassword(t, "Str0ng!pass"),
		IsActive:            true,
		FailedLoginAttempts: 2,
	}
	var updated *models.User
	repo := &mockUserRepo{
		getByEmailFunc: func(email string) (*models.User, error) { return user, nil },
		updateFunc: func(u *models.User) error {
			updated = u
			return nil
		},
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	got, err := svc.Authenticate("user@example.com", "Str0ng!pass")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 0, got.FailedLoginAttempts, "success resets the failure counter")
	assert.False(t, got.IsLocked)
	assert.NotNil(t, got.LastLogin)
}

func TestAuthService_Authenticate_WrongPasswordIncrementsCounter(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: hashTestPassword(t, "Str0ng!pass"),
		IsActive:     true,
	}
	repo := &mockUserRepo{
		getByEmailFunc: func(email string) (*models.User, error) { return user, nil },
		updateFunc:     func(u *models.User) error { return nil },
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	_, err := svc.Authenticate("user@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Equal(t, 1, user.FailedLoginAttempts)
	assert.NotNil(t, user.LastFailedLogin)
	assert.False(t, user.IsLocked)
}

func TestAuthService_Authenticate_LocksAfterMaxAttempts(t *testing.T) {
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "user@example.com",
		PasswordHash:        hashTestPassword(t, "Str0ng!pass"),
		IsActive:            true,
		FailedLoginAttempts: 4,
	}
	repo := &mockUserRepo{
		getByEmailFunc: func(email string) (*models.User, error) { return user, nil },
		updateFunc:     func(u *models.User) error { return nil },
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	_, err := svc.Authenticate("user@example.com", "wrong")
	assert.True(t, services.IsAccountLocked(err))
	assert.True(t, user.IsLocked)
	assert.Equal(t, 5, user.FailedLoginAttempts)
}

func TestAuthService_Authenticate_LockedRejectsCorrectPassword(t *testing.T) {
	lastFailed := time.Now().UTC().Add(-5 * time.Minute)
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "user@example.com",
		PasswordHash:        hashTestPassword(t, "Str0ng!pass"),
		IsActive:            true,
		IsLocked:            true,
		FailedLoginAttempts: 5,
		LastFailedLogin:     &lastFailed,
	}
	repo := &mockUserRepo{
		getByEmailFunc: func(email string) (*models.User, error) { return user, nil },
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	_, err := svc.Authenticate("user@example.com", "Str0ng!pass")
	var locked *services.LockedError
	require.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.Remaining, 0)
	assert.LessOrEqual(t, locked.Remaining, 30)
}

func TestAuthService_Authenticate_LockExpiresAfterWindow(t *testing.T) {
	lastFailed := time.Now().UTC().Add(-31 * time.Minute)
	user := &models.User{
		ID:                  uuid.New(),
		Email:               "user@example.com",
		PasswordHash:        hashTestPassword(t, "Str0ng!pass"),
		IsActive:            true,
		IsLocked:            true,
		FailedLoginAttempts: 5,
		LastFailedLogin:     &lastFailed,
	}
	repo := &mockUserRepo{
		getByEmailFunc: func(email string) (*models.User, error) { return user, nil },
		updateFunc:     func(u *models.User) error { return nil },
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	got, err := svc.Authenticate("user@example.com", "Str0ng!pass")
	require.NoError(t, err)
	assert.False(t, got.IsLocked)
	assert.Equal(t, 0, got.FailedLoginAttempts)
}

func TestAuthService_Authenticate_OAuthOnlyUserFails(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "oauth@example.com",
		IsActive: true,
		// No password hash: account created via OAuth.
	}
	repo := &mockUserRepo{
		getByEmailFunc: func(email string) (*models.User, error) { return user, nil },
		updateFunc:     func(u *models.User) error { return nil },
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	_, err := svc.Authenticate("oauth@example.com", "anything")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Equal(t, 1, user.FailedLoginAttempts, "missing hash still spends an attempt")
}

func TestAuthService_Authenticate_UnknownEmail(t *testing.T) {
	repo := &mockUserRepo{
		getByEmailFunc: func(email string) (*models.User, error) { return nil, nil },
	}

	svc := services.NewAuthService(repo, newTestSecurityConfig())

	_, err := svc.Authenticate("ghost@example.com", "whatever")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
