// Package config loads the service configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	DefaultDatabaseMaxOpenConns = 10
	DefaultDatabaseMaxIdleConns = 5

	DefaultQuotePageSize    = 20
	DefaultQuoteMaxPageSize = 100
)

// Repository drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Quotes    QuotesConfig    `koanf:"quotes"    validate:"required"`
	Documents DocumentsConfig `koanf:"documents" validate:"required"`

	// Features holds flag name to value, read by the config-backed flag provider.
	Features map[string]string `koanf:"features"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for the catalog API.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// ServicesConfig lists downstream services.
type ServicesConfig struct {
	Catalog CatalogEndpointConfig `koanf:"catalog" validate:"required"`
}

// CatalogEndpointConfig points at the REST API serving clients, vehicles,
// parts and services. SeedFile replaces the API with a fixed YAML catalog.
type CatalogEndpointConfig struct {
	BaseURL  string `koanf:"base_url"  validate:"required_without=SeedFile,omitempty,url"`
	Name     string `koanf:"name"      validate:"required"`
	APIKey   string `koanf:"api_key"`
	SeedFile string `koanf:"seed_file"`
}

// DatabaseConfig selects and tunes the quote store.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=memory postgres"`
	DSN             string        `koanf:"dsn"               validate:"required_if=Driver postgres"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"omitempty,min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"omitempty,min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	OpTimeout       time.Duration `koanf:"op_timeout"        validate:"required,min=100ms"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// CacheConfig configures the Redis cache in front of catalog lookups.
type CacheConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Addr      string        `koanf:"addr"       validate:"required_if=Enabled true"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db"         validate:"min=0,max=15"`
	TTL       time.Duration `koanf:"ttl"        validate:"required_if=Enabled true"`
	KeyPrefix string        `koanf:"key_prefix"`
}

// EventsConfig configures quote event publishing to Kafka.
type EventsConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Brokers  []string `koanf:"brokers"   validate:"required_if=Enabled true"`
	Topic    string   `koanf:"topic"     validate:"required_if=Enabled true"`
	ClientID string   `koanf:"client_id"`
}

// QuotesConfig tunes the quote list.
type QuotesConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"required,min=1"`
	MaxPageSize     int `koanf:"max_page_size"     validate:"required,gtefield=DefaultPageSize"`
}

// DocumentsConfig holds the shop identity printed on quote documents.
type DocumentsConfig struct {
	ShopName string `koanf:"shop_name" validate:"required"`
	Footer   string `koanf:"footer"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "autoshop-quotes",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "15s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotes.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "autoshop-quotes",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "10s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "2s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"services.catalog.base_url": "http://localhost:54321/rest/v1",
		"services.catalog.name":     "catalog",

		"database.driver":            DriverMemory,
		"database.max_open_conns":    DefaultDatabaseMaxOpenConns,
		"database.max_idle_conns":    DefaultDatabaseMaxIdleConns,
		"database.conn_max_lifetime": "30m",
		"database.op_timeout":        "3s",
		"database.migrate_on_start":  false,

		"cache.enabled":    false,
		"cache.addr":       "localhost:6379",
		"cache.db":         0,
		"cache.ttl":        "5m",
		"cache.key_prefix": "quotes:catalog:",

		"events.enabled":   false,
		"events.topic":     "quotes.events",
		"events.client_id": "autoshop-quotes",

		"quotes.default_page_size": DefaultQuotePageSize,
		"quotes.max_page_size":     DefaultQuoteMaxPageSize,

		"documents.shop_name": "Oficina",
		"documents.footer":    "Orçamento válido até a data indicada.",
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, "configs/base.yaml"); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, fmt.Sprintf("configs/%s.yaml", profile)); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// APP_DATABASE_DSN -> database.dsn. Multi-word keys are file-only.
	err := k.Load(env.ProviderWithValue("APP_", ".", func(key, value string) (string, any) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, "APP_")), "_", ".")
		if _, isList := listKeys[key]; isList {
			return key, strings.Split(value, ",")
		}

		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// listKeys are comma-separated when set from the environment.
var listKeys = map[string]struct{}{
	"events.brokers": {},
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
