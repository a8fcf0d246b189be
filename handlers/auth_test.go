package handlers

import (
	"testing"

	"github.com/onecare/backend/models"
	"github.com/onecare/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestMatchAdminCredentials(t *testing.T) {
	assert.True(t, MatchAdminCredentials("admin@onecare.com", "admin123", "admin@onecare.com", "admin123"))
}

func TestMatchAdminCredentialsRejectsWrongPassword(t *testing.T) {
	assert.False(t, MatchAdminCredentials("admin@onecare.com", "admin123", "admin@onecare.com", "admin124"))
}

func TestMatchAdminCredentialsRejectsWrongEmail(t *testing.T) {
	assert.False(t, MatchAdminCredentials("admin@onecare.com", "admin123", "user@onecare.com", "admin123"))
}

func TestCheckUserLogin(t *testing.T) {
	hashed, err := utils.HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.User{Email: "asha@example.com", Password: hashed, Role: "patient"}

	assert.NoError(t, checkUserLogin(user, "s3cret", "patient"))
	// An omitted role matches any account.
	assert.NoError(t, checkUserLogin(user, "s3cret", ""))
}

func TestCheckUserLoginRejectsWrongPassword(t *testing.T) {
	hashed, err := utils.HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.User{Password: hashed, Role: "patient"}

	assert.ErrorIs(t, checkUserLogin(user, "wrong", "patient"), errInvalidCredentials)
}

func TestCheckUserLoginRejectsRoleMismatch(t *testing.T) {
	hashed, err := utils.HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.User{Password: hashed, Role: "patient"}

	assert.ErrorIs(t, checkUserLogin(user, "s3cret", "doctor"), errRoleMismatch)
}

func TestEmailTaken(t *testing.T) {
	assert.True(t, emailTaken(1, nil))
	assert.False(t, emailTaken(0, nil))
}

func TestEmailTakenOnDuplicateKey(t *testing.T) {
	// The unique index on users.email reports code 11000 when the pre-check
	// races with another signup.
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	assert.True(t, emailTaken(0, dup))
}
