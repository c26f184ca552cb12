package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the root of the Senate Lobbying Disclosure API.
const DefaultBaseURL = "https://lda.senate.gov/api/v1/"

// APIKeyEnv overrides source.apiKey when set.
const APIKeyEnv = "SENATE_API_KEY"

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("source.apiKey is required")

// Config represents the overall application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Sync     SyncConfig     `yaml:"sync"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// SourceConfig holds the upstream API settings.
type SourceConfig struct {
	APIKey            string        `yaml:"apiKey"`
	AuthHeader        string        `yaml:"auth_header"`
	BaseURL           string        `yaml:"base_url"`
	HTTPProxy         string        `yaml:"http_proxy"`
	TimeoutSeconds    int           `yaml:"timeout_seconds"`
	Timeout           time.Duration `yaml:"-"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryWaitMillis   int           `yaml:"retry_wait_ms"`
	RetryWait         time.Duration `yaml:"-"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// SyncConfig controls the background sync loop of the serve command.
type SyncConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	BatchSize       int           `yaml:"batch_size"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// Load reads the configuration from the given path, applies defaults and
// validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Source.APIKey = key
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in zero values. It is safe to call more than once.
func (c *Config) ApplyDefaults() {
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = DefaultBaseURL
	}
	if c.Source.AuthHeader == "" {
		c.Source.AuthHeader = "Authorization"
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = 30
	}
	c.Source.Timeout = time.Duration(c.Source.TimeoutSeconds) * time.Second

	if c.Source.MaxRetries < 0 {
		c.Source.MaxRetries = 0
	}
	if c.Source.RetryWaitMillis <= 0 {
		c.Source.RetryWaitMillis = 500
	}
	c.Source.RetryWait = time.Duration(c.Source.RetryWaitMillis) * time.Millisecond

	if c.Sync.IntervalSeconds <= 0 {
		c.Sync.IntervalSeconds = 3600
	}
	c.Sync.Interval = time.Duration(c.Sync.IntervalSeconds) * time.Second
	if c.Sync.BatchSize <= 0 {
		c.Sync.BatchSize = 100
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 5
	}
	if c.Server.CacheTTLSeconds <= 0 {
		c.Server.CacheTTLSeconds = 300
	}
}

// Validate reports configuration errors that must stop the process before
// any request is made.
func (c *Config) Validate() error {
	if c.Source.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	return nil
}
