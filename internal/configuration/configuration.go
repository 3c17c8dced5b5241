package configuration

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Model store backends.
const (
	StoreTypeFile     = "file"
	StoreTypeMemory   = "memory"
	StoreTypeSQLite   = "sqlite"
	StoreTypePostgres = "postgres"
	StoreTypeMySQL    = "mysql"
	StoreTypeS3       = "s3"
)

// DefaultProviderMaxBody is the default upstream response limit in bytes.
const DefaultProviderMaxBody = 32 << 20

// EnvPrefix prefixes environment overrides, e.g. SUPPLYSCORE_PROVIDER_URL.
const EnvPrefix = "SUPPLYSCORE"

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger: logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server: HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Provider: upstream order data source
	Provider ProviderConfig `mapstructure:"provider"`
	// Store: where the trained model is persisted
	Store StoreConfig `mapstructure:"store"`
	// Audit: scoring audit trail
	Audit AuditConfig `mapstructure:"audit"`
	// Publish: score publication to Kafka
	Publish PublishConfig `mapstructure:"publish"`
	// History: in-memory training history
	History HistoryConfig `mapstructure:"history"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level: log level: debug, info, warn, warning, error.
	// Value is case-insensitive but checked in lowercase.
	Level string `mapstructure:"level"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Address: address and port where the server will listen (e.g., ":8080").
	Address string `mapstructure:"address"`
	// ReadTimeout and WriteTimeout bound a single request.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ProviderConfig describes the upstream order data endpoint.
type ProviderConfig struct {
	// URL: address answering GET with a JSON array of orders.
	URL string `mapstructure:"url"`
	// Timeout: upper bound of one fetch (default 30s).
	Timeout time.Duration `mapstructure:"timeout"`
	// Token: optional bearer token.
	Token string `mapstructure:"token"`
	// MaxBody: largest accepted response in bytes (default 32 MiB).
	MaxBody int64 `mapstructure:"max_body"`
}

// StoreConfig selects the model store backend.
type StoreConfig struct {
	// Type: file (default), memory, sqlite, postgres, mysql or s3.
	Type string `mapstructure:"type"`
	// Path: artifact file for the file store.
	Path string `mapstructure:"path"`
	// DSN: data source name for SQL stores.
	DSN string `mapstructure:"dsn"`
	// Table: table holding the artifact in SQL stores.
	Table string `mapstructure:"table"`
	// Bucket, Key and Region locate the S3 object.
	Bucket string `mapstructure:"bucket"`
	Key    string `mapstructure:"key"`
	Region string `mapstructure:"region"`
}

// AuditConfig defines the audit trail parameters
type AuditConfig struct {
	// Audit file path (optional)
	File string `mapstructure:"file"`
	// Maximal audit file size in MB (default 100)
	Size int `mapstructure:"size"`
	// Number of audit files (default 20)
	Amount int `mapstructure:"amount"`
}

// PublishConfig enables score publication when both fields are set.
type PublishConfig struct {
	// Brokers: comma-separated host:port list.
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// Enabled reports whether scores should be published.
func (p *PublishConfig) Enabled() bool {
	return p.Brokers != "" && p.Topic != ""
}

// HistoryConfig bounds the in-memory training history.
type HistoryConfig struct {
	// Length: number of training reports kept (default 20).
	Length int `mapstructure:"length"`
}

// Validate checks the correctness of the entire application configuration.
// Calls validation for each nested structure and returns the first detected error.
// Returns nil if the configuration is valid.
func (c *AppConfig) Validate() error {
	validators := []interface{ Validate() error }{
		&c.Logger,
		&c.Server,
		&c.Provider,
		&c.Store,
		&c.Audit,
		&c.Publish,
		&c.History,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the correctness of the logger configuration.
// Verifies that the log level is set and is one of the supported values.
// Supported values: debug, info, warn, warning, error (case-insensitive).
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logger.level: must be specified")
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	return nil
}

// Validate checks the correctness of the server configuration.
// Verifies that the server address is set.
func (n *ServerConfig) Validate() error {
	if n.Address == "" {
		return errors.New("server.address: must be specified")
	}
	if n.ReadTimeout < 0 || n.WriteTimeout < 0 {
		return errors.New("server: timeouts must not be negative")
	}

	return nil
}

// Validate checks the provider URL and applies the default timeout.
func (p *ProviderConfig) Validate() error {
	if p.URL == "" {
		return errors.New("provider.url: must be specified")
	}
	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("provider.url: invalid URL '%s'", p.URL)
	}

	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.Timeout < 0 {
		return errors.New("provider.timeout: must be positive")
	}

	if p.MaxBody == 0 {
		p.MaxBody = DefaultProviderMaxBody
	}
	if p.MaxBody < 0 {
		return errors.New("provider.max_body: must be positive")
	}

	return nil
}

// Validate checks the fields required by the selected backend.
func (s *StoreConfig) Validate() error {
	if s.Type == "" {
		s.Type = StoreTypeFile
	}

	switch s.Type {
	case StoreTypeFile:
		if s.Path == "" {
			s.Path = "supplier_score_model.json"
		}
	case StoreTypeMemory:
	case StoreTypeSQLite, StoreTypePostgres, StoreTypeMySQL:
		if s.DSN == "" {
			return fmt.Errorf("store.dsn: must be specified for %s store", s.Type)
		}
		if s.Table == "" {
			s.Table = "model_artifacts"
		}
	case StoreTypeS3:
		if s.Bucket == "" {
			return errors.New("store.bucket: must be specified for s3 store")
		}
	default:
		return fmt.Errorf("store.type: unsupported type '%s'", s.Type)
	}

	return nil
}

// Validate audit parameters
func (a *AuditConfig) Validate() error {
	if a.Amount == 0 {
		a.Amount = 20
	}

	if a.Size == 0 {
		a.Size = 100
	}

	if a.Amount < 0 || a.Size < 0 {
		return errors.New("audit: size and amount must be positive")
	}

	return nil
}

// Validate rejects half-configured publication.
func (p *PublishConfig) Validate() error {
	if (p.Brokers == "") != (p.Topic == "") {
		return errors.New("publish: brokers and topic must be specified together")
	}

	return nil
}

// Validate applies the default length and rejects negative values.
func (h *HistoryConfig) Validate() error {
	if h.Length == 0 {
		h.Length = 20
	}
	if h.Length < 0 {
		return errors.New("history.length: must be positive")
	}

	return nil
}

// LoadConfig loads configuration from the specified file using Viper.
// Supports YAML format. Environment variables prefixed with SUPPLYSCORE
// override values from the file, e.g. SUPPLYSCORE_STORE_TYPE=memory.
//
// Parameter configPath: path to the configuration file.
//
// Returns a pointer to AppConfig or an error if:
// - the file is not found or inaccessible
// - the configuration has invalid format
// - one of the sections fails validation
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logger.level", "info")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("provider.url", "")
	v.SetDefault("provider.timeout", "30s")
	v.SetDefault("provider.token", "")
	v.SetDefault("provider.max_body", DefaultProviderMaxBody)
	v.SetDefault("store.type", StoreTypeFile)
	v.SetDefault("store.path", "supplier_score_model.json")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table", "model_artifacts")
	v.SetDefault("store.bucket", "")
	v.SetDefault("store.key", "")
	v.SetDefault("store.region", "")
	v.SetDefault("audit.file", "")
	v.SetDefault("publish.brokers", "")
	v.SetDefault("publish.topic", "")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
