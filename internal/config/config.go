// Package config loads the planner configuration. Values come from built-in
// defaults, then an optional JSON file, then PLANNER_* environment variables
// (a .env file is honored), and the result is validated.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. PLANNER_SERVER_PORT.
const EnvPrefix = "PLANNER"

// Config represents the application configuration
type Config struct {
	AppEnv      string            `json:"app_env" envconfig:"APP_ENV" validate:"required,oneof=local development production test"`
	Server      ServerConfig      `json:"server" envconfig:"SERVER"`
	Logging     LoggingConfig     `json:"logging" envconfig:"LOGGING"`
	Environment EnvironmentConfig `json:"environment" envconfig:"ENVIRONMENT"`
	AI          AIConfig          `json:"ai" envconfig:"AI"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string   `json:"host" envconfig:"HOST"`
	Port            int      `json:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     Duration `json:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    Duration `json:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     Duration `json:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout Duration `json:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	AllowedOrigins  []string `json:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `json:"format" envconfig:"FORMAT" validate:"oneof=json console"`
}

// EnvironmentConfig configures the metrics provider.
type EnvironmentConfig struct {
	Provider     string   `json:"provider" envconfig:"PROVIDER" validate:"oneof=synthetic external"`
	Seed         uint64   `json:"seed" envconfig:"SEED"`
	Timeout      Duration `json:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	CacheTTL     Duration `json:"cache_ttl" envconfig:"CACHE_TTL" validate:"gte=0"`
	OpenAQURL    string   `json:"openaq_url" envconfig:"OPENAQ_URL" validate:"required_if=Provider external,omitempty,url"`
	OpenAQAPIKey string   `json:"openaq_api_key" envconfig:"OPENAQ_API_KEY"`
	PowerURL     string   `json:"power_url" envconfig:"POWER_URL" validate:"required_if=Provider external,omitempty,url"`
	UserAgent    string   `json:"user_agent" envconfig:"USER_AGENT"`
}

// AIConfig configures the insight generator.
type AIConfig struct {
	Provider    string   `json:"provider" envconfig:"PROVIDER" validate:"oneof=rules openai"`
	APIKey      string   `json:"api_key" envconfig:"API_KEY" validate:"required_if=Provider openai"`
	BaseURL     string   `json:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
	Model       string   `json:"model" envconfig:"MODEL"`
	Temperature float32  `json:"temperature" envconfig:"TEMPERATURE" validate:"gte=0,lte=2"`
	MaxTokens   int      `json:"max_tokens" envconfig:"MAX_TOKENS" validate:"gte=0"`
	Timeout     Duration `json:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// Duration is a time.Duration written as "5s" in JSON and the environment.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.Decode(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Decode implements envconfig.Decoder.
func (d *Duration) Decode(value string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		AppEnv: "development",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			AllowedOrigins:  []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Environment: EnvironmentConfig{
			Provider:  "synthetic",
			Seed:      20240101,
			Timeout:   Duration(5 * time.Second),
			CacheTTL:  Duration(5 * time.Minute),
			OpenAQURL: "https://api.openaq.org/v2/latest",
			PowerURL:  "https://power.larc.nasa.gov/api/temporal/daily/point",
			UserAgent: "smart-urban-planner/1.0",
		},
		AI: AIConfig{
			Provider:    "rules",
			Model:       "gpt-4o-mini",
			Temperature: 0.4,
			MaxTokens:   1024,
			Timeout:     Duration(10 * time.Second),
		},
	}
}

// LoadConfig loads configuration from file and environment variables. A
// missing file is not an error; a malformed one is.
func LoadConfig(configPath string) (*Config, error) {
	// .env does not override variables already set in the process.
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
