package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.MongoDBURL)
	assert.Equal(t, "hospital_auth", cfg.MongoDBName)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "24", cfg.SessionDuration)
	assert.Equal(t, "admin@onecare.com", cfg.AdminEmail)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENVIRONMENT", "sandbox")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigNormalizesEnvironmentCase(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENVIRONMENT", "Production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGO_DB_NAME", "hospital_test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ADMIN_EMAIL", "root@clinic.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "hospital_test", cfg.MongoDBName)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "root@clinic.example", cfg.AdminEmail)
}
