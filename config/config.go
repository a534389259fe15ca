package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	devBaseURL  = "http://localhost:3000/api"
	prodBaseURL = "https://minted-api.vercel.app/api"
)

// Config stores the application configuration. Values are loaded from
// environment variables with optional loading from a .env file.
type Config struct {
	Env          string
	APIBaseURL   string
	SessionToken string
	Port         string
	FrontendURL  string
	SnapshotPath string
}

// LoadConfig reads configuration from the environment and a .env file when
// one is present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("No .env file found, using environment variables only")
		} else {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	env := getEnv("MINTED_ENV", "development")
	if env != "development" && env != "production" {
		return nil, fmt.Errorf("MINTED_ENV must be development or production, got %q", env)
	}

	baseURL := getEnv("MINTED_API_BASE_URL", "")
	if baseURL == "" {
		if env == "production" {
			baseURL = prodBaseURL
		} else {
			baseURL = devBaseURL
		}
	}

	cfg := &Config{
		Env:          env,
		APIBaseURL:   baseURL,
		SessionToken: getEnv("MINTED_SESSION_TOKEN", ""),
		Port:         getEnv("MINTED_PORT", "8080"),
		FrontendURL:  getEnv("MINTED_FRONTEND_URL", ""),
		SnapshotPath: getEnv("MINTED_SNAPSHOT_PATH", filepath.Join("conv", "conversations.bolt")),
	}

	if cfg.SessionToken == "" {
		log.Println("Warning: MINTED_SESSION_TOKEN is not set, starting without a session")
	}

	log.Printf("Using %s environment, API base URL: %s", cfg.Env, cfg.APIBaseURL)
	return cfg, nil
}

// getEnv retrieves the value of the environment variable named by the key,
// falling back to defaultValue when unset.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
