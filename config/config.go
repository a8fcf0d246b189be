package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	ServerPort     string
	AllowedOrigins string
	Environment    string

	MinioAccessKey string
	MinioSecretKey string
	MinioEndpoint  string
	MinioUseSSL    bool

	JWTSecret       string
	SessionDuration string

	AdminEmail    string
	AdminPassword string
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load() // Ignore error since file might not exist in production

	// Get environment with default
	env := getEnvWithDefault("ENVIRONMENT", "development")
	env = strings.ToLower(env)

	// Validate environment value
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[env] {
		return nil, fmt.Errorf("invalid environment value: %s", env)
	}

	config := &Config{
		Environment: env,

		MongoDBURL:  getEnvWithDefault("MONGODB_URL", "mongodb://127.0.0.1:27017"),
		MongoDBName: getEnvWithDefault("MONGO_DB_NAME", "hospital_auth"),
		RedisURL:    getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),

		ServerPort:     getEnvWithDefault("SERVER_PORT", "8080"),
		AllowedOrigins: getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000"),

		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioEndpoint:  getEnvWithDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioUseSSL:    getEnvWithDefault("MINIO_USE_SSL", "false") == "true",

		JWTSecret:       os.Getenv("JWT_SECRET"),
		SessionDuration: getEnvWithDefault("SESSION_DURATION", "24"),

		// Seeded privileged account. Previous revisions compared a pair of
		// in-source constants; the account now lives in the environment.
		AdminEmail:    getEnvWithDefault("ADMIN_EMAIL", "admin@onecare.com"),
		AdminPassword: getEnvWithDefault("ADMIN_PASSWORD", "admin123"),
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return config, nil
}

// IsDevelopment returns whether the current environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns whether the current environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsStaging returns whether the current environment is staging
func (c *Config) IsStaging() bool {
	return c.Environment == "staging"
}
