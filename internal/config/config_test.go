package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataPath != filepath.Join("data", "nutrilog.db") {
		t.Errorf("DataPath = %q, want default", cfg.DataPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.WriteTimeout != 5000*time.Millisecond {
		t.Errorf("WriteTimeout = %v, want 5000ms", cfg.WriteTimeout)
	}
}

func TestLoad_NilViper(t *testing.T) {
	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("NUTRILOG_LOG_LEVEL", "DEBUG")
	t.Setenv("NUTRILOG_WRITE_TIMEOUT_MS", "1500")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want lowercased %q", cfg.LogLevel, "debug")
	}
	if cfg.WriteTimeout != 1500*time.Millisecond {
		t.Errorf("WriteTimeout = %v, want 1500ms", cfg.WriteTimeout)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nutrilog.yaml")
	contents := "data_path: /tmp/custom.db\nlog_level: warn\nwrite_timeout_ms: 2500\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataPath != "/tmp/custom.db" {
		t.Errorf("DataPath = %q, want %q", cfg.DataPath, "/tmp/custom.db")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.WriteTimeout != 2500*time.Millisecond {
		t.Errorf("WriteTimeout = %v, want 2500ms", cfg.WriteTimeout)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoad_RejectsUnrecognizedLogLevel(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "verbose")
	if _, err := Load(v, ""); err == nil {
		t.Fatal("expected an error for an unrecognized log_level")
	}
}

func TestLoad_TraceIsAccepted(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "trace")
	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "trace")
	}
}

func TestLoad_RejectsNonPositiveWriteTimeout(t *testing.T) {
	v := viper.New()
	v.Set("write_timeout_ms", 0)
	if _, err := Load(v, ""); err == nil {
		t.Fatal("expected an error for a zero write_timeout_ms")
	}
}

func TestLoad_RejectsEmptyDataPath(t *testing.T) {
	v := viper.New()
	v.Set("data_path", "")
	if _, err := Load(v, ""); err == nil {
		t.Fatal("expected an error for an empty data_path")
	}
}
