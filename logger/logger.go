package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"marketcrawler/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a zap.Logger configured based on the given options.
func New(opts config.LogConfig) (*zap.Logger, error) {
	level := opts.Level
	if level == "" {
		level = "info"
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	switch opts.Format {
	case "", "json", "console":
	default:
		return nil, fmt.Errorf("invalid log format: %q", opts.Format)
	}

	cores := []zapcore.Core{stdoutCore(opts, lvl)}

	// Optional file output with rotation via lumberjack
	if opts.OutputFile != "" {
		fileCore, err := fileCore(opts.OutputFile, lvl)
		if err != nil {
			return nil, err
		}
		cores = append(cores, fileCore)
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// stdoutCore writes human-readable output in dev or when asked to, JSON otherwise.
func stdoutCore(opts config.LogConfig, lvl zapcore.Level) zapcore.Core {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if opts.Environment == "dev" || opts.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl)
}

// fileCore always writes JSON so rotated files stay machine-readable.
func fileCore(path string, lvl zapcore.Level) (zapcore.Core, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,   // max file size (MB) before rotation
		MaxBackups: 5,    // max number of old log files to keep
		MaxAge:     7,    // max age (days) to retain a log file
		Compress:   true, // compress rotated files
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, lvl), nil
}
