package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/autobooks/autobooks-backend/internal/dto"
)

type Config struct {
	DatabaseURL       string
	SupabaseJWTSecret string
	PlaidClientID     string
	PlaidSecret       string
	PlaidEnvironment  dto.PlaidEnvironment
	PlaidWebhookURL   string
	TokenCipherKey    string // base64, 32 bytes once decoded
	LogLevel          string
	Port              string
	SyncSchedule      string
}

func New() *Config {
	// Load .env if present without overriding already-set variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	return &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		PlaidClientID:     os.Getenv("PLAID_CLIENT_ID"),
		PlaidSecret:       os.Getenv("PLAID_SECRET"),
		PlaidEnvironment:  getPlaidEnvironment(os.Getenv("PLAID_ENV")),
		PlaidWebhookURL:   os.Getenv("PLAID_WEBHOOK_URL"),
		TokenCipherKey:    os.Getenv("TOKEN_CIPHER_KEY"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		Port:              getDefault("PORT", "8080"),
		SyncSchedule:      getDefault("SYNC_SCHEDULE", "0 6 * * *"),
	}
}

// Validate fails fast on missing secrets so misconfiguration surfaces at
// startup instead of as a confusing downstream failure.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", c.DatabaseURL},
		{"SUPABASE_JWT_SECRET", c.SupabaseJWTSecret},
		{"PLAID_CLIENT_ID", c.PlaidClientID},
		{"PLAID_SECRET", c.PlaidSecret},
		{"TOKEN_CIPHER_KEY", c.TokenCipherKey},
	}
	for _, v := range required {
		if v.value == "" {
			return fmt.Errorf("required environment variable %s is not set", v.name)
		}
	}
	return nil
}

func getPlaidEnvironment(env string) dto.PlaidEnvironment {
	switch env {
	case "sandbox":
		return dto.PlaidSandbox
	case "development":
		return dto.PlaidDevelopment
	default: // "production"
		return dto.PlaidProduction
	}
}

func getDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
