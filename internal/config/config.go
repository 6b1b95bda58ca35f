package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	DBPath string
	Vision VisionConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// VisionConfig configures the receipt extraction client. Endpoint is the full
// chat-completions URL of an OpenAI-compatible vision deployment.
type VisionConfig struct {
	APIKey    string
	Endpoint  string
	Timeout   time.Duration
	MaxTokens int
}

// Load reads configuration from the environment, loading a .env file first if
// one is present.
func Load() (Config, error) {
	var cfg Config

	_ = godotenv.Load()

	serverPort, err := parseIntEnv("PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	cfg.DBPath = getEnv("DB_PATH", "data/billsplit.db")

	visionTimeout, err := parseDurationEnv("VISION_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	visionMaxTokens, err := parseIntEnv("VISION_MAX_TOKENS", 800)
	if err != nil {
		return cfg, err
	}

	cfg.Vision = VisionConfig{
		APIKey:    getEnv("VISION_API_KEY", ""),
		Endpoint:  getEnv("VISION_ENDPOINT", ""),
		Timeout:   visionTimeout,
		MaxTokens: visionMaxTokens,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Enabled reports whether extraction is configured. The server runs without
// it; the scan endpoint then answers with an upstream error.
func (c VisionConfig) Enabled() bool {
	return c.APIKey != "" && c.Endpoint != ""
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("PORT must be greater than 0")
	}

	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}

	if c.Vision.APIKey != "" && c.Vision.Endpoint == "" {
		return fmt.Errorf("VISION_ENDPOINT is required when VISION_API_KEY is set")
	}

	if c.Vision.MaxTokens <= 0 {
		return fmt.Errorf("VISION_MAX_TOKENS must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return value, nil
}
