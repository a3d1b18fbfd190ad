package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prepare builds the zap logger described by conf: a colorized console
// sink (when the stream is a terminal) tee'd with an optional file
// sink, grounded on the teacher's LoggingConfig.Prepare. The returned
// closer releases the file sink's handle, if one was opened; callers
// must Close it on shutdown.
func (conf *LoggingConfig) Prepare() (*zap.Logger, io.Closer, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stdout) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	var consoleCore zapcore.Core
	switch conf.Console.Level {
	case "debug":
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.DebugLevel)
	case "normal":
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.InfoLevel)
	default:
		consoleCore = zapcore.NewNopCore()
	}

	fileCore, closer, err := conf.fileCore()
	if err != nil {
		return nil, nil, err
	}

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller()), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (conf *LoggingConfig) fileCore() (zapcore.Core, io.Closer, error) {
	var level zapcore.Level
	switch conf.File.Level {
	case "debug":
		level = zap.DebugLevel
	case "normal":
		level = zap.InfoLevel
	default:
		return zapcore.NewNopCore(), nopCloser{}, nil
	}

	if dir := filepath.Dir(conf.File.Destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("unable to create log directory: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if conf.File.Mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(conf.File.Destination, flags, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file %q: %w", conf.File.Destination, err)
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zapcore.NewCore(encoder, zapcore.Lock(f), level), f, nil
}
