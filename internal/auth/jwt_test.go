package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u7", Username: "somchai", Role: models.RoleResident}

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, models.Viewer{ID: "u7", Role: models.RoleResident}, claims.Viewer())
	assert.Equal(t, "somchai", claims.Subject)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	user := &models.User{ID: "u7", Username: "somchai", Role: models.RoleAdmin}

	token, err := NewJWTManager("other-secret", time.Hour).Generate(user)
	require.NoError(t, err)
	_, err = NewJWTManager("test-secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewJWTManager("test-secret", -time.Minute).Generate(user)
	require.NoError(t, err)
	_, err = NewJWTManager("test-secret", time.Hour).Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRequiresRole(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	_, err := m.Generate(&models.User{ID: "u7", Username: "somchai"})
	assert.Error(t, err, "a user without a role cannot be issued a token")

	claims := jwt.MapClaims{"user_id": "u7", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
