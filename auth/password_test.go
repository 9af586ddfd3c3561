package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	stored := HashPassword("admin123")
	require.Contains(t, stored, "$")

	assert.True(t, VerifyPassword("admin123", stored))
	assert.False(t, VerifyPassword("admin124", stored))
	assert.False(t, VerifyPassword("", stored))

	// Fresh salt each time.
	assert.NotEqual(t, stored, HashPassword("admin123"))
}

func TestVerifyPasswordMalformedStored(t *testing.T) {
	assert.False(t, VerifyPassword("x", "no-separator"))
	assert.False(t, VerifyPassword("x", ""))
}

func TestNewSessionToken(t *testing.T) {
	a := NewSessionToken()
	b := NewSessionToken()
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 43)
	assert.False(t, strings.ContainsAny(a, "+/="))
}
