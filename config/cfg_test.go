package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vibraphone/pegtl-css/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.DefaultInput != "example.css" {
		t.Errorf("expected default input example.css, got %q", cfg.DefaultInput)
	}
	if cfg.Logging.Console.Level != "normal" {
		t.Errorf("expected normal console level, got %q", cfg.Logging.Console.Level)
	}
}

func TestLoadConfigurationNoPath(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultInput != "example.css" {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cssparse.yaml")
	content := "default_input: styles.css\nlogging:\n  console:\n    level: debug\n  file:\n    level: none\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultInput != "styles.css" {
		t.Errorf("expected default_input styles.css, got %q", cfg.DefaultInput)
	}
	if cfg.Logging.Console.Level != "debug" {
		t.Errorf("expected console level debug, got %q", cfg.Logging.Console.Level)
	}
}

func TestLoadConfigurationRejectsInvalidLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cssparse.yaml")
	content := "default_input: styles.css\nlogging:\n  console:\n    level: loud\n  file:\n    level: none\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.LoadConfiguration(path); err == nil {
		t.Fatal("expected validation to reject an out-of-range logging level")
	}
}
