package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ESGLEDGER_"

// LoadDotEnv loads variables from .env files without overriding variables
// already set. Missing files are ignored; with no arguments ./.env is read.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with ESGLEDGER_* variables. Setting
// ESGLEDGER_KAFKA_BROKERS also enables the review queue.
func ApplyEnv(cfg *Config) error {
	setString(&cfg.Output.DefaultFormat, "OUTPUT")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Logging.File, "LOG_FILE")
	setString(&cfg.Store.Driver, "STORE_DRIVER")
	setString(&cfg.Store.DSN, "STORE_DSN")
	setString(&cfg.Cache.Backend, "CACHE_BACKEND")
	setString(&cfg.Cache.Dir, "CACHE_DIR")
	setString(&cfg.Cache.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Cache.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Review.Topic, "KAFKA_TOPIC")
	setString(&cfg.Factors.File, "FACTORS_FILE")

	if v := getEnv("KAFKA_BROKERS"); v != "" {
		cfg.Review.Brokers = splitList(v)
		cfg.Review.Enabled = true
	}

	if v := getEnv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		cfg.Cache.Redis.DB = n
	}
	if v := getEnv("STORE_WRITERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSTORE_WRITERS: %w", EnvPrefix, err)
		}
		cfg.Store.Writers = n
	}
	if v := getEnv("VALIDATION_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sVALIDATION_CONCURRENCY: %w", EnvPrefix, err)
		}
		cfg.Validation.Concurrency = n
	}
	return nil
}

func getEnv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func setString(dst *string, name string) {
	if v := getEnv(name); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
