// Package config loads esgledger settings from YAML, .env files and
// ESGLEDGER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

const (
	defaultPrecision   = 2
	defaultConcurrency = 8
	defaultCacheTTL    = 10 * time.Minute
	defaultReviewTopic = "esg.review"
	maxPrecision       = 10
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("output format must be text or json")
	ErrInvalidPrecision    = errors.New("output precision must be between 0 and 10")
	ErrInvalidDriver       = errors.New("store driver must be sqlite or postgres")
	ErrMissingDSN          = errors.New("store dsn is required for postgres")
	ErrInvalidCacheBackend = errors.New("cache backend must be none, file or redis")
	ErrInvalidCacheTTL     = errors.New("cache ttl must be positive")
	ErrMissingRedisAddr    = errors.New("redis addr is required for the redis cache")
	ErrMissingBrokers      = errors.New("review requires at least one kafka broker")
	ErrInvalidConcurrency  = errors.New("validation concurrency must be positive")
	ErrInvalidWriters      = errors.New("store writers cannot be negative")
)

// Config is the full esgledger configuration.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Store      StoreConfig      `yaml:"store"`
	Cache      CacheConfig      `yaml:"cache"`
	Review     ReviewConfig     `yaml:"review"`
	Validation ValidationConfig `yaml:"validation"`
	Factors    FactorsConfig    `yaml:"factors"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// StoreConfig selects the entry database. An empty sqlite DSN means the
// ledger file under the config directory. Writers bounds concurrent batch
// transactions on postgres; zero uses the store default.
type StoreConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn,omitempty"`
	Writers int    `yaml:"writers,omitempty"`
}

// CacheConfig configures the history read cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Dir     string        `yaml:"dir,omitempty"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// ReviewConfig configures the Kafka review queue.
type ReviewConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ValidationConfig tunes the quality validator.
type ValidationConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// FactorsConfig points at a custom emission factor table. Empty uses the
// built-in table.
type FactorsConfig struct {
	File string `yaml:"file,omitempty"`
}

// New returns a configuration with defaults.
func New() *Config {
	return &Config{
		Output:  OutputConfig{DefaultFormat: FormatText, Precision: defaultPrecision},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Store:   StoreConfig{Driver: DriverSQLite},
		Cache: CacheConfig{
			Backend: CacheNone,
			TTL:     defaultCacheTTL,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Review:     ReviewConfig{Brokers: []string{"localhost:9092"}, Topic: defaultReviewTopic},
		Validation: ValidationConfig{Concurrency: defaultConcurrency},
	}
}

// Load builds the configuration. It starts from defaults, reads
// config.yaml from the config directory when present, shallow-merges the
// overlay file when overlay is not empty, and applies ESGLEDGER_*
// environment overrides. The result is validated.
func Load(overlay string) (*Config, error) {
	cfg := New()

	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	if err = cfg.loadFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if overlay != "" {
		if err = ShallowMergeYAML(cfg, overlay); err != nil {
			return nil, err
		}
	}

	if err = ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{FormatText, FormatJSON}, c.Output.DefaultFormat) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.DefaultFormat))
	}
	if c.Output.Precision < 0 || c.Output.Precision > maxPrecision {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPrecision, c.Output.Precision))
	}

	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, ErrMissingDSN)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDriver, c.Store.Driver))
	}
	if c.Store.Writers < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWriters, c.Store.Writers))
	}

	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile, CacheRedis:
		if c.Cache.TTL <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidCacheTTL, c.Cache.TTL))
		}
		if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
			errs = append(errs, ErrMissingRedisAddr)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidCacheBackend, c.Cache.Backend))
	}

	if c.Review.Enabled && len(c.Review.Brokers) == 0 {
		errs = append(errs, ErrMissingBrokers)
	}
	if c.Validation.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Validation.Concurrency))
	}

	return errors.Join(errs...)
}

// StoreDSN returns the configured DSN, defaulting sqlite to
// <config dir>/esgledger.db.
func (c *Config) StoreDSN() (string, error) {
	if c.Store.DSN != "" || c.Store.Driver != DriverSQLite {
		return c.Store.DSN, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "esgledger.db"), nil
}

// CacheDir returns the file cache directory, defaulting to
// <config dir>/cache.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}
