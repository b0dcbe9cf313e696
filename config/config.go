package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	CourseAPI     CourseAPIConfig
	Session       SessionConfig
	Redis         RedisConfig
	Purchase      PurchaseConfig
	Upload        UploadConfig
	Storage       StorageConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
	MetricsToken   string
}

// CourseAPIConfig points at the external course API this front end consumes.
type CourseAPIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type SessionConfig struct {
	Backend      string // "cookie" or "redis"
	Secret       string
	Issuer       string
	TTLHours     int
	CookieDomain string
	CookieSecure bool
	// LegacyAdminToken is the literal token older API deployments hand out
	// for the admin panel. Empty disables the shortcut.
	LegacyAdminToken string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PurchaseConfig struct {
	SimulationDelayMS     int
	IdempotencyTTLSeconds int
	CompletedTriggerURL   string
}

type UploadConfig struct {
	Backend     string // "api" or "s3"
	MaxUploadMB int
}

type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PublicBaseURL   string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "http://localhost:3000")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("API_TIMEOUT_SECONDS", 30)
	v.SetDefault("SESSION_BACKEND", "cookie")
	v.SetDefault("SESSION_ISSUER", "fitforge-web")
	v.SetDefault("SESSION_TTL_HOURS", 168) // matches the API's 7 day tokens
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("LEGACY_ADMIN_TOKEN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PAYMENT_SIMULATION_DELAY_MS", 1500)
	v.SetDefault("PURCHASE_IDEMPOTENCY_TTL_SECONDS", 600)
	v.SetDefault("UPLOAD_BACKEND", "api")
	v.SetDefault("MAX_UPLOAD_MB", 200)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "fitforge-web")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "fitforge")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "fitforge-web")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
			MetricsToken:   v.GetString("METRICS_AUTH_TOKEN"),
		},
		CourseAPI: CourseAPIConfig{
			BaseURL:        strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			TimeoutSeconds: v.GetInt("API_TIMEOUT_SECONDS"),
		},
		Session: SessionConfig{
			Backend:          strings.ToLower(v.GetString("SESSION_BACKEND")),
			Secret:           v.GetString("SESSION_SECRET"),
			Issuer:           v.GetString("SESSION_ISSUER"),
			TTLHours:         v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:     v.GetString("COOKIE_DOMAIN"),
			CookieSecure:     v.GetBool("COOKIE_SECURE"),
			LegacyAdminToken: v.GetString("LEGACY_ADMIN_TOKEN"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Purchase: PurchaseConfig{
			SimulationDelayMS:     v.GetInt("PAYMENT_SIMULATION_DELAY_MS"),
			IdempotencyTTLSeconds: v.GetInt("PURCHASE_IDEMPOTENCY_TTL_SECONDS"),
			CompletedTriggerURL:   v.GetString("PURCHASE_COMPLETED_TRIGGER_URL"),
		},
		Upload: UploadConfig{
			Backend:     strings.ToLower(v.GetString("UPLOAD_BACKEND")),
			MaxUploadMB: v.GetInt("MAX_UPLOAD_MB"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
			PublicBaseURL:   v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.CourseAPI.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	switch c.Session.Backend {
	case "cookie":
		if c.Session.Secret == "" {
			return fmt.Errorf("SESSION_SECRET is required for the cookie session backend")
		}
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}

	switch c.Upload.Backend {
	case "api":
	case "s3":
		if c.Storage.BucketName == "" || c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
			return fmt.Errorf("STORAGE_BUCKET_NAME, STORAGE_ACCESS_KEY_ID and STORAGE_SECRET_ACCESS_KEY are required when UPLOAD_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_BACKEND %q", c.Upload.Backend)
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
