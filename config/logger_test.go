package config_test

import (
	"path/filepath"
	"testing"

	"github.com/vibraphone/pegtl-css/config"
)

func TestPrepareNoSinks(t *testing.T) {
	lc := config.LoggingConfig{
		Console: config.LoggerConfig{Level: "none"},
		File:    config.LoggerConfig{Level: "none"},
	}
	log, closer, err := lc.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	if log == nil {
		t.Fatal("expected a non-nil logger even with no sinks enabled")
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("expected no-op closer to succeed, got %v", err)
	}
}

func TestPrepareFileSink(t *testing.T) {
	dir := t.TempDir()
	lc := config.LoggingConfig{
		Console: config.LoggerConfig{Level: "none"},
		File:    config.LoggerConfig{Level: "debug", Destination: filepath.Join(dir, "sub", "out.log"), Mode: "overwrite"},
	}
	log, closer, err := lc.Prepare()
	if err != nil {
		t.Fatal(err)
	}

	log.Debug("hello")
	_ = log.Sync()

	if err := closer.Close(); err != nil {
		t.Fatalf("expected file closer to succeed, got %v", err)
	}
}
