package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/models"
)

func TestGenerateAndSubject(t *testing.T) {
	tokens := NewTokenManager("secret", "test-issuer", time.Hour)
	signed, err := tokens.Generate(models.User{ID: 7, Name: "A", Email: "a@b.com"})
	require.NoError(t, err)

	sub, err := tokens.Subject(signed)
	require.NoError(t, err)
	assert.Equal(t, "7", sub)

	_, err = NewTokenManager("other", "test-issuer", time.Hour).Subject(signed)
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	signed, err := NewTokenManager("secret", "iss", time.Hour).Generate(models.User{ID: 1})
	require.NoError(t, err)

	exp, ok := ExpiresAt(signed)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	assert.False(t, Expired(signed, time.Now()))
	assert.True(t, Expired(signed, time.Now().Add(2*time.Hour)))
}

func TestExpiredOpaqueToken(t *testing.T) {
	_, ok := ExpiresAt("T1")
	assert.False(t, ok)
	assert.False(t, Expired("T1", time.Now()))
}
