package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Model    ModelConfig
	Imaging  ImagingConfig
	Session  SessionConfig
}

// DatabaseConfig holds database-related configuration.
// An empty DSN disables the record store.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Enabled reports whether a record store is configured.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.DSN) != ""
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
	GRPCAddr string
}

// ModelConfig holds settings for the hosted extraction model
type ModelConfig struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Temperature   float32
	Timeout       time.Duration
	RPS           float64
	Burst         int
}

// APIKey returns the key of the selected provider.
func (m ModelConfig) APIKey() string {
	if m.Provider == ProviderOpenAI {
		return m.OpenAIAPIKey
	}
	return m.GeminiAPIKey
}

// ImagingConfig holds upload preparation settings
type ImagingConfig struct {
	Pdftoppm     string
	DPI          int
	MaxPages     int
	MaxDimension int
}

// SessionConfig holds session batch storage settings.
// An empty RedisURL keeps batches in process memory.
type SessionConfig struct {
	RedisURL string
	TTL      time.Duration
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// envBindings maps viper keys onto the environment variables that override them.
var envBindings = map[string]string{
	"database.dsn":               "DB_URL",
	"database.max_conns":         "DB_MAX_CONNS",
	"database.min_conns":         "DB_MIN_CONNS",
	"database.max_conn_lifetime": "DB_MAX_CONN_LIFETIME",
	"database.max_conn_idle":     "DB_MAX_CONN_IDLE_TIME",
	"database.dial_timeout":      "DB_DIAL_TIMEOUT",
	"server.http_addr":           "HTTP_ADDR",
	"server.grpc_addr":           "GRPC_ADDR",
	"model.provider":             "MODEL_PROVIDER",
	"model.gemini_api_key":       "GEMINI_API_KEY",
	"model.gemini_model":         "GEMINI_MODEL",
	"model.gemini_base_url":      "GEMINI_BASE_URL",
	"model.openai_api_key":       "OPENAI_API_KEY",
	"model.openai_model":         "OPENAI_MODEL",
	"model.openai_base_url":      "OPENAI_BASE_URL",
	"model.temperature":          "MODEL_TEMPERATURE",
	"model.timeout":              "MODEL_TIMEOUT",
	"model.rps":                  "MODEL_RPS",
	"model.burst":                "MODEL_BURST",
	"imaging.pdftoppm":           "PDFTOPPM",
	"imaging.dpi":                "RASTER_DPI",
	"imaging.max_pages":          "RASTER_MAX_PAGES",
	"imaging.max_dimension":      "IMAGE_MAX_DIMENSION",
	"session.redis_url":          "REDIS_URL",
	"session.ttl":                "SESSION_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.grpc_addr", ":8081")
	v.SetDefault("model.provider", ProviderGemini)
	v.SetDefault("model.gemini_model", "gemini-2.5-flash")
	v.SetDefault("model.gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("model.openai_model", "gpt-4o-mini")
	v.SetDefault("model.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.timeout", 60*time.Second)
	v.SetDefault("model.rps", 0.0)
	v.SetDefault("model.burst", 1)
	v.SetDefault("imaging.pdftoppm", "pdftoppm")
	v.SetDefault("imaging.dpi", 200)
	v.SetDefault("imaging.max_pages", 0)
	v.SetDefault("imaging.max_dimension", 2048)
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.ttl", 24*time.Hour)
}

// LoadConfig loads configuration from defaults, an optional YAML file named by
// WORKORDERS_CONFIG, a .env file in the working directory and the environment.
func LoadConfig() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path := os.Getenv("WORKORDERS_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "read config file "+path, err)
		}
	}

	return &Config{
		Database: DatabaseConfig{
			DSN:             strings.TrimSpace(v.GetString("database.dsn")),
			MaxConns:        v.GetInt32("database.max_conns"),
			MinConns:        v.GetInt32("database.min_conns"),
			MaxConnLifetime: v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime: v.GetDuration("database.max_conn_idle"),
			DialTimeout:     v.GetDuration("database.dial_timeout"),
		},
		Server: ServerConfig{
			HTTPAddr: v.GetString("server.http_addr"),
			GRPCAddr: v.GetString("server.grpc_addr"),
		},
		Model: ModelConfig{
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString("model.provider"))),
			GeminiAPIKey:  v.GetString("model.gemini_api_key"),
			GeminiModel:   v.GetString("model.gemini_model"),
			GeminiBaseURL: v.GetString("model.gemini_base_url"),
			OpenAIAPIKey:  v.GetString("model.openai_api_key"),
			OpenAIModel:   v.GetString("model.openai_model"),
			OpenAIBaseURL: v.GetString("model.openai_base_url"),
			Temperature:   float32(v.GetFloat64("model.temperature")),
			Timeout:       v.GetDuration("model.timeout"),
			RPS:           v.GetFloat64("model.rps"),
			Burst:         v.GetInt("model.burst"),
		},
		Imaging: ImagingConfig{
			Pdftoppm:     v.GetString("imaging.pdftoppm"),
			DPI:          v.GetInt("imaging.dpi"),
			MaxPages:     v.GetInt("imaging.max_pages"),
			MaxDimension: v.GetInt("imaging.max_dimension"),
		},
		Session: SessionConfig{
			RedisURL: strings.TrimSpace(v.GetString("session.redis_url")),
			TTL:      v.GetDuration("session.ttl"),
		},
	}, nil
}

// Validate checks the settings every entry point needs. The record store is
// optional and is never required here.
func (c *Config) Validate() error {
	var errs []error
	switch c.Model.Provider {
	case ProviderGemini, ProviderOpenAI:
		if c.Model.APIKey() == "" {
			errs = append(errs, fmt.Errorf("an API key for model provider %q is required", c.Model.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("MODEL_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.Model.Provider))
	}
	if c.Model.Timeout <= 0 {
		errs = append(errs, errors.New("MODEL_TIMEOUT must be positive"))
	}
	if c.Imaging.DPI <= 0 {
		errs = append(errs, errors.New("RASTER_DPI must be positive"))
	}
	if c.Imaging.MaxDimension <= 0 {
		errs = append(errs, errors.New("IMAGE_MAX_DIMENSION must be positive"))
	}
	if len(errs) > 0 {
		return NewAppError("CONFIG_ERROR", "invalid configuration", errors.Join(append([]error{ErrInvalidInput}, errs...)...))
	}
	return nil
}

// ValidateServer additionally checks the listener addresses used by the daemon.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
