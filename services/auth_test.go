package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixzhu97/whatschat-sub002/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, userID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticateMissingToken(t *testing.T) {
	auth := NewAuthenticator(testSecret, newFakeUsers(), testLogger())

	_, err := auth.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestAuthenticateMalformedToken(t *testing.T) {
	auth := NewAuthenticator(testSecret, newFakeUsers(), testLogger())

	_, err := auth.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	auth := NewAuthenticator(testSecret, newFakeUsers(), testLogger())
	token := signToken(t, "other-secret", uuid.NewString())

	_, err := auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	auth := NewAuthenticator(testSecret, newFakeUsers(), testLogger())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), signed)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticateUnknownIdentity(t *testing.T) {
	// Valid token, but no identity record behind it: same generic failure.
	auth := NewAuthenticator(testSecret, newFakeUsers(), testLogger())
	token := signToken(t, testSecret, uuid.NewString())

	_, err := auth.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthenticateSuccess(t *testing.T) {
	users := newFakeUsers()
	userID := uuid.New()
	users.users[userID.String()] = &models.User{ID: userID, Username: "ada"}

	auth := NewAuthenticator(testSecret, users, testLogger())
	token := signToken(t, testSecret, userID.String())

	user, err := auth.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "ada", user.Username)
}
