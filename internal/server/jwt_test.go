package server

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofdin/proofdin/internal/config"
)

func setupTestJWTService(t *testing.T, expirationHours int) *JWTService {
	t.Helper()
	return NewJWTService(config.AuthConfig{
		JWTSecret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		JWTExpirationHours: expirationHours,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := setupTestJWTService(t, 24)
	userID := uuid.New()

	token, err := service.GenerateToken(userID)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	getter, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, getter.GetUserID())
}

func TestJWTService_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	token, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_Invalid(t *testing.T) {
	service := setupTestJWTService(t, 24)
	other := NewJWTService(config.AuthConfig{JWTSecret: "a-different-secret", JWTExpirationHours: 24})

	foreign, err := other.GenerateToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", "token string is empty"},
		{"garbage", "not-a-jwt", "malformed token"},
		{"wrong secret", foreign, "invalid token signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
