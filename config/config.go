package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Persistence
	DataDir string

	// Redis configuration (optional; the file store is used when unset)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Provider selection: "auto", "huggingface"/"hf" or "github"
	AIProvider string

	// Hugging Face router
	HFToken          string
	HFAPIURL         string
	HFModelsURL      string
	HFModel          string
	HFNutritionModel string
	HFMedsModel      string
	HFModels         []string

	// GitHub Models
	GitHubAPIKey         string
	GitHubAPIURL         string
	GitHubModel          string
	GitHubNutritionModel string
	GitHubMedsModel      string
	GitHubModels         []string
}

// LoadConfig creates a new Config instance with values from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "4000"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		DataDir: getEnv("DATA_DIR", "data"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: getEnv("JWT_SECRET", "dev_jwt_secret"),

		AIProvider: strings.ToLower(getEnv("AI_PROVIDER", "auto")),

		HFToken:          os.Getenv("HF_API_TOKEN"),
		HFAPIURL:         getEnv("HF_API_URL", "https://router.huggingface.co/v1/chat/completions"),
		HFModelsURL:      getEnv("HF_MODELS_URL", "https://router.huggingface.co/v1/models"),
		HFModel:          os.Getenv("HF_MODEL"),
		HFNutritionModel: os.Getenv("HF_NUTRITION_MODEL"),
		HFMedsModel:      os.Getenv("HF_MEDS_MODEL"),
		HFModels:         splitModels(os.Getenv("HF_MODELS")),

		GitHubAPIKey:         githubAPIKey(),
		GitHubAPIURL:         getEnv("GITHUB_MODELS_API_URL", "https://models.inference.ai.azure.com/chat/completions"),
		GitHubModel:          getEnv("GITHUB_MODEL", "gpt-4o-mini"),
		GitHubNutritionModel: os.Getenv("GITHUB_NUTRITION_MODEL"),
		GitHubMedsModel:      os.Getenv("GITHUB_MEDS_MODEL"),
		GitHubModels:         splitModels(os.Getenv("GITHUB_MODELS")),
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", dbStr, err)
		}
		cfg.RedisDB = db
	}

	// Per-agent models fall back to the provider default
	if cfg.GitHubNutritionModel == "" {
		cfg.GitHubNutritionModel = cfg.GitHubModel
	}
	if cfg.GitHubMedsModel == "" {
		cfg.GitHubMedsModel = cfg.GitHubModel
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// RedisConfigured reports whether a Redis backend was requested
func (c *Config) RedisConfigured() bool {
	return c.RedisHost != ""
}

// RedisAddr returns the host:port address for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// githubAPIKey checks the historical aliases for the GitHub Models credential
func githubAPIKey() string {
	for _, key := range []string{"GITHUB_MODELS_API_KEY", "GITHUB_API_KEY", "GITHUB_MODEL_API_KEY", "GITHUB_TOKEN"} {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func splitModels(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	models := make([]string, 0, len(parts))
	for _, part := range parts {
		if model := strings.TrimSpace(part); model != "" {
			models = append(models, model)
		}
	}
	return models
}
