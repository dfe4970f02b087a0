package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 5)

	token, expires, err := m.GenerateToken("user-1", "admin")
	require.NoError(t, err)
	assert.False(t, expires.IsZero())

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTManager("one", 5).GenerateToken("user-1", "customer")
	require.NoError(t, err)

	_, err = NewJWTManager("two", 5).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.Error(t, ValidatePassword("short"))
}
