package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testHash = "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_API_KEY_HASH", testHash)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:scheduler.db?_pragma=foreign_keys(1)" {
		t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
	}
	if cfg.MetricsPath != "/metrics" {
		t.Fatalf("unexpected metrics path %q", cfg.MetricsPath)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.Location)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected logging config %q %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.CacheSize != 128 {
		t.Fatalf("unexpected cache config %v %d", cfg.CacheTTL, cfg.CacheSize)
	}
	if cfg.APIKeyHash != testHash {
		t.Fatalf("expected api key hash from environment")
	}
}

func TestLoad_FileAndEnvironmentPrecedence(t *testing.T) {
	chdirTemp(t)

	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	content := "http_port: 9090\nlog_format: text\ncache_size: 16\napi_key_hash: \"" + testHash + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SCHEDULER_HTTP_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Fatalf("expected environment to override file, got %d", cfg.HTTPPort)
	}
	if cfg.LogFormat != "text" || cfg.CacheSize != 16 {
		t.Fatalf("expected file values, got %q %d", cfg.LogFormat, cfg.CacheSize)
	}
}

func TestLoad_ReportsMissingAndInvalidTogether(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_API_KEY_HASH", "")
	t.Setenv("SCHEDULER_HTTP_PORT", "eighty")
	t.Setenv("SCHEDULER_TIMEZONE", "Mars/Olympus")
	t.Setenv("SCHEDULER_CACHE_TTL", "-1s")

	_, err := Load("")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(cfgErr.Missing) != 1 || cfgErr.Missing[0] != "api_key_hash" {
		t.Fatalf("unexpected missing keys %v", cfgErr.Missing)
	}
	want := map[string]bool{"http_port": true, "timezone": true, "cache_ttl": true}
	if len(cfgErr.Invalid) != len(want) {
		t.Fatalf("unexpected invalid keys %v", cfgErr.Invalid)
	}
	for _, key := range cfgErr.Invalid {
		if !want[key] {
			t.Fatalf("unexpected invalid key %q", key)
		}
	}
	expected := "config: missing required keys: api_key_hash; invalid values for keys: http_port, timezone, cache_ttl"
	if err.Error() != expected {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_RejectsNonArgonHash(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_API_KEY_HASH", "plaintext")

	_, err := Load("")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) || len(cfgErr.Invalid) != 1 || cfgErr.Invalid[0] != "api_key_hash" {
		t.Fatalf("expected invalid api_key_hash, got %v", err)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_API_KEY_HASH", testHash)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
