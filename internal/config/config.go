package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. SAPDASH_SERVER_PORT.
const EnvPrefix = "SAPDASH"

// FileEnvVar names the variable holding an explicit config file path.
const FileEnvVar = "SAPDASH_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Messaging MessagingConfig `yaml:"messaging"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Security  SecurityConfig  `yaml:"security"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// StorageConfig selects the event store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// MessagingConfig selects the message bus and its topics.
type MessagingConfig struct {
	Driver          string        `yaml:"driver"`
	Brokers         []string      `yaml:"brokers"`
	EventsTopic     string        `yaml:"events_topic" split_words:"true"`
	RetryTopic      string        `yaml:"retry_topic" split_words:"true"`
	GroupID         string        `yaml:"group_id" split_words:"true"`
	BatchTimeout    time.Duration `yaml:"batch_timeout" split_words:"true"`
	ConsumerEnabled bool          `yaml:"consumer_enabled" split_words:"true"`
}

// DashboardConfig holds the page behaviour knobs.
type DashboardConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" split_words:"true"`
	AutoRefresh     bool          `yaml:"auto_refresh" split_words:"true"`
	CSVQuoting      string        `yaml:"csv_quoting" split_words:"true"`
	CSVBOM          bool          `yaml:"csv_bom"`
	SeedCount       int           `yaml:"seed_count" split_words:"true"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" split_words:"true"`
	EnableCORS     bool            `yaml:"enable_cors" split_words:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size" split_words:"true"`
	WriteBufferSize int `yaml:"write_buffer_size" split_words:"true"`
}

// Load builds the configuration from defaults, then the config file if one
// exists, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg. Keys missing
// from the file keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes driver names.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server request and shutdown timeouts must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("invalid storage driver: %q", c.Storage.Driver)
	}

	c.Messaging.Driver = strings.ToLower(c.Messaging.Driver)
	switch c.Messaging.Driver {
	case "memory":
	case "kafka":
		if len(c.Messaging.Brokers) == 0 {
			return fmt.Errorf("kafka messaging requires at least one broker")
		}
	default:
		return fmt.Errorf("invalid messaging driver: %q", c.Messaging.Driver)
	}
	if c.Messaging.EventsTopic == "" || c.Messaging.RetryTopic == "" {
		return fmt.Errorf("messaging topics must be set")
	}

	switch strings.ToLower(c.Dashboard.CSVQuoting) {
	case "", "raw", "rfc4180":
	default:
		return fmt.Errorf("invalid csv quoting: %q", c.Dashboard.CSVQuoting)
	}
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("dashboard refresh interval must be positive")
	}
	if c.Dashboard.SeedCount < 0 {
		return fmt.Errorf("dashboard seed count cannot be negative")
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}
	return nil
}

// configFilePath returns the config file to load, or "" when there is none.
// An explicit SAPDASH_CONFIG wins even if the file is missing, so the read
// error surfaces.
func configFilePath() string {
	if path := os.Getenv(FileEnvVar); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "data/events.db",
		},
		Messaging: MessagingConfig{
			Driver:          "memory",
			Brokers:         []string{"localhost:9092"},
			EventsTopic:     "sap-integration-events",
			RetryTopic:      "sap-integration-order-retry",
			GroupID:         "dashboard-group",
			BatchTimeout:    10 * time.Millisecond,
			ConsumerEnabled: true,
		},
		Dashboard: DashboardConfig{
			RefreshInterval: 30 * time.Second,
			CSVQuoting:      "raw",
			SeedCount:       20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}
