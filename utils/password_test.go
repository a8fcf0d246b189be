package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
}

func TestCheckPasswordHashRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.False(t, CheckPasswordHash("s3cret-past", hash))
	assert.False(t, CheckPasswordHash("", hash))
	// Byte-for-byte: no normalization of case or whitespace.
	assert.False(t, CheckPasswordHash("S3cret-pass", hash))
	assert.False(t, CheckPasswordHash("s3cret-pass ", hash))
}

func TestCheckPasswordHashRejectsPlaintextStored(t *testing.T) {
	// A legacy plaintext value in the password field never verifies.
	assert.False(t, CheckPasswordHash("admin123", "admin123"))
}
