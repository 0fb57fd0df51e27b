package common

import (
	"os"
	"strconv"
	"time"

	"github.com/healthtrack/prescription-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Vault  VaultConfig
	OCR    OCRConfig
	Vision VisionConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	MaxUploadBytes  int64
	RatePerSecond   float64
	RateBurst       int
	ShutdownTimeout time.Duration
}

// VaultConfig holds document store configuration
type VaultConfig struct {
	DSN        string
	UploadsDir string
}

// OCRConfig holds recognition engine configuration
type OCRConfig struct {
	Language    string
	TessdataDir string
}

// VisionConfig holds vision model configuration
type VisionConfig struct {
	Model   string
	APIKey  string
	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			MaxUploadBytes:  getEnvAsInt64("MAX_UPLOAD_BYTES", constants.MaxUploadBytes),
			RatePerSecond:   getEnvAsFloat64("RATE_PER_SECOND", 5),
			RateBurst:       getEnvAsInt("RATE_BURST", 10),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Vault: VaultConfig{
			DSN:        getEnv("VAULT_DSN", "file:documents.db?_pragma=busy_timeout(5000)"),
			UploadsDir: getEnv("UPLOADS_DIR", "./uploads"),
		},
		OCR: OCRConfig{
			Language:    getEnv("OCR_LANGUAGE", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
		Vision: VisionConfig{
			Model:   getEnv("GEMINI_VISION_MODEL", "models/gemini-2.5-flash"),
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 15*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_BYTES must be positive", ErrInvalidInput)
	}
	if c.Vault.UploadsDir == "" {
		return NewAppError("CONFIG_ERROR", "UPLOADS_DIR is required", ErrInvalidInput)
	}
	return nil
}
