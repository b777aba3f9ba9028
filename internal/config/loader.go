package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SCHEDULER_HTTP_PORT.
const EnvPrefix = "SCHEDULER"

// Config captures the configuration values for the scheduler service.
type Config struct {
	HTTPPort    int
	MetricsPath string
	SQLiteDSN   string
	APIKeyHash  string
	Location    *time.Location
	LogLevel    string
	LogFormat   string
	CacheTTL    time.Duration
	CacheSize   int
}

// Load reads configuration from defaults, the optional YAML file at path and
// SCHEDULER_ prefixed environment variables, in increasing precedence. When
// path is empty, config.yaml is looked up in ./config and the working
// directory and may be absent.
//
// Missing and invalid keys are collected and reported together.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 8080)
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("sqlite_dsn", "file:scheduler.db?_pragma=foreign_keys(1)")
	v.SetDefault("api_key_hash", "")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cache_ttl", "30s")
	v.SetDefault("cache_size", 128)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", describePath(path), err)
		}
	}

	cfg := Config{
		MetricsPath: strings.TrimSpace(v.GetString("metrics_path")),
		SQLiteDSN:   strings.TrimSpace(v.GetString("sqlite_dsn")),
		APIKeyHash:  strings.TrimSpace(v.GetString("api_key_hash")),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:   strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if port, err := strconv.Atoi(strings.TrimSpace(v.GetString("http_port"))); err != nil || port <= 0 || port > 65535 {
		invalid = append(invalid, "http_port")
	} else {
		cfg.HTTPPort = port
	}

	if cfg.SQLiteDSN == "" {
		missing = append(missing, "sqlite_dsn")
	}
	if cfg.APIKeyHash == "" {
		missing = append(missing, "api_key_hash")
	} else if !strings.HasPrefix(cfg.APIKeyHash, "$argon2id$") {
		invalid = append(invalid, "api_key_hash")
	}

	if !strings.HasPrefix(cfg.MetricsPath, "/") {
		invalid = append(invalid, "metrics_path")
	}

	if loc, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone"))); err != nil {
		invalid = append(invalid, "timezone")
	} else {
		cfg.Location = loc
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "log_level")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		invalid = append(invalid, "log_format")
	}

	if ttl, err := time.ParseDuration(strings.TrimSpace(v.GetString("cache_ttl"))); err != nil || ttl <= 0 {
		invalid = append(invalid, "cache_ttl")
	} else {
		cfg.CacheTTL = ttl
	}

	if size, err := strconv.Atoi(strings.TrimSpace(v.GetString("cache_size"))); err != nil || size <= 0 {
		invalid = append(invalid, "cache_size")
	} else {
		cfg.CacheSize = size
	}

	if len(missing) > 0 || len(invalid) > 0 {
		return Config{}, &Error{Missing: missing, Invalid: invalid}
	}

	return cfg, nil
}

// Error lists the configuration keys that are missing or hold invalid values.
type Error struct {
	Missing []string
	Invalid []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required keys: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid values for keys: "+strings.Join(e.Invalid, ", "))
	}
	return "config: " + strings.Join(parts, "; ")
}

func describePath(path string) string {
	if path == "" {
		return "config.yaml"
	}
	return path
}
