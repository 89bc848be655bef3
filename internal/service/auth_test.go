package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankcards/internal/apperr"
	"bankcards/internal/config"
	"bankcards/internal/models"
)

func newAuthService() (*AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	cfg := &config.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
	}
	return NewAuthService(users, cfg, testLogger()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "testuser", "test@example.com", "password123", models.RoleUser)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash, "password must be hashed")

	token, err := svc.Login(ctx, "testuser", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleUser, role)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "ab", "test@example.com", "password123", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(ctx, "testuser", "test@example.com", "short", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "testuser", "test@example.com", "password123", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "testuser", "other@example.com", "password456", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "testuser", "test@example.com", "password123", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "testuser", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService()

	for _, token := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		_, _, err := svc.ParseToken(token)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "token %q", token)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "testuser", "test@example.com", "password123", models.RoleUser)
	require.NoError(t, err)
	token, err := svc.Login(ctx, "testuser", "password123")
	require.NoError(t, err)

	other := NewAuthService(newFakeUserStore(), &config.Config{
		JWTSecret:   "another-secret",
		TokenExpiry: time.Hour,
	}, testLogger())

	_, _, err = other.ParseToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokenCarriesAdminRole(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "cardadmin", "admin@example.com", "admin123", models.RoleAdmin)
	require.NoError(t, err)
	token, err := svc.Login(ctx, "cardadmin", "admin123")
	require.NoError(t, err)

	_, role, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
}
