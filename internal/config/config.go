package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseWebAPIKey                string `mapstructure:"FIREBASE_WEB_API_KEY"`
	FirebaseStorageBucket            string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTAccessTTL  time.Duration `mapstructure:"JWT_ACCESS_TTL"`
	JWTRefreshTTL time.Duration `mapstructure:"JWT_REFRESH_TTL"`

	RedisURL         string        `mapstructure:"REDIS_URL"`
	RateLimitWindow  time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	RateLimitMax     int           `mapstructure:"RATE_LIMIT_MAX"`
	AuthRateLimitMax int           `mapstructure:"AUTH_RATE_LIMIT_MAX"`

	N8NBaseURL string `mapstructure:"N8N_BASE_URL"`
	N8NAPIKey  string `mapstructure:"N8N_API_KEY"`

	StorageDriver  string `mapstructure:"STORAGE_DRIVER"`
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	PDFRenderer         string        `mapstructure:"PDF_RENDERER"`
	ExportSweepInterval time.Duration `mapstructure:"EXPORT_SWEEP_INTERVAL"`
	ExportStaleAfter    time.Duration `mapstructure:"EXPORT_STALE_AFTER"`
}

const (
	StorageDriverFirebase = "firebase"
	StorageDriverMinio    = "minio"

	PDFRendererWorkflow = "workflow"
	PDFRendererChrome   = "chrome"
)

var appConfig *Config

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_WEB_API_KEY",
	"FIREBASE_STORAGE_BUCKET",
	"CLIENT_URL",
	"JWT_SECRET",
	"JWT_ACCESS_TTL",
	"JWT_REFRESH_TTL",
	"REDIS_URL",
	"RATE_LIMIT_WINDOW",
	"RATE_LIMIT_MAX",
	"AUTH_RATE_LIMIT_MAX",
	"N8N_BASE_URL",
	"N8N_API_KEY",
	"STORAGE_DRIVER",
	"MINIO_ENDPOINT",
	"MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY",
	"MINIO_BUCKET",
	"MINIO_USE_SSL",
	"PDF_RENDERER",
	"EXPORT_SWEEP_INTERVAL",
	"EXPORT_STALE_AFTER",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("JWT_ACCESS_TTL", "168h")
	v.SetDefault("JWT_REFRESH_TTL", "720h")
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("AUTH_RATE_LIMIT_MAX", 5)
	v.SetDefault("STORAGE_DRIVER", StorageDriverFirebase)
	v.SetDefault("PDF_RENDERER", PDFRendererWorkflow)
	v.SetDefault("EXPORT_SWEEP_INTERVAL", "10m")
	v.SetDefault("EXPORT_STALE_AFTER", "1h")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

func (cfg *Config) validate() error {
	if cfg.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.FirebaseWebAPIKey == "" {
		return errors.New("FIREBASE_WEB_API_KEY is required")
	}
	if cfg.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("JWT_SECRET is required and must be at least 32 bytes")
	}
	if cfg.JWTAccessTTL <= 0 || cfg.JWTRefreshTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}
	if cfg.N8NBaseURL == "" {
		return errors.New("N8N_BASE_URL is required")
	}
	if cfg.RateLimitWindow <= 0 || cfg.RateLimitMax <= 0 || cfg.AuthRateLimitMax <= 0 {
		return errors.New("rate limit window and maximums must be positive")
	}

	switch cfg.StorageDriver {
	case StorageDriverFirebase:
		if cfg.FirebaseStorageBucket == "" {
			return errors.New("FIREBASE_STORAGE_BUCKET is required when STORAGE_DRIVER=firebase")
		}
	case StorageDriverMinio:
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
			return errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET are required when STORAGE_DRIVER=minio")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.PDFRenderer {
	case PDFRendererWorkflow, PDFRendererChrome:
	default:
		return fmt.Errorf("unsupported PDF_RENDERER %q", cfg.PDFRenderer)
	}

	if cfg.ExportSweepInterval <= 0 || cfg.ExportStaleAfter <= 0 {
		return errors.New("EXPORT_SWEEP_INTERVAL and EXPORT_STALE_AFTER must be positive")
	}
	return nil
}

// IsRelease reports whether gin runs in release mode.
func (cfg *Config) IsRelease() bool {
	return strings.EqualFold(cfg.GinMode, "release")
}

// GetConfig returns the loaded application configuration.
// It panics if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
