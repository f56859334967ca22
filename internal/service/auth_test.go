package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dietpal/backend/internal/userstore"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(userstore.New(t.TempDir()), "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newTestAuthService(t)

	token, user, err := auth.Register("alice@example.com", "password123", "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password123", user.PasswordHash)

	loginToken, loginUser, err := auth.Login("alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
	assert.Equal(t, user.ID, loginUser.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := newTestAuthService(t)

	_, _, err := auth.Register("alice@example.com", "password123", "Alice")
	require.NoError(t, err)

	_, _, err = auth.Register("alice@example.com", "password456", "Alice Again")
	assert.ErrorIs(t, err, ErrEmailRegistered)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	auth := newTestAuthService(t)

	// Different emails with the same local part collide on the username.
	_, _, err := auth.Register("alice@example.com", "password123", "Alice")
	require.NoError(t, err)

	_, _, err = auth.Register("alice@other.org", "password456", "Other Alice")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginWrongPassword(t *testing.T) {
	auth := newTestAuthService(t)

	_, _, err := auth.Register("alice@example.com", "password123", "Alice")
	require.NoError(t, err)

	_, _, err = auth.Login("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login("ghost@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	auth := newTestAuthService(t)

	token, user, err := auth.Register("alice@example.com", "password123", "Alice")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID.String())
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	auth := newTestAuthService(t)
	token, _, err := auth.Register("alice@example.com", "password123", "Alice")
	require.NoError(t, err)

	other := NewAuthService(userstore.New(t.TempDir()), "different-secret")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
