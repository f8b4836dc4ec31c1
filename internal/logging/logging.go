// Package logging builds the zap logger shared by every sarifview component.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dkoosis/sarifview/internal/config"
)

// ANSI color codes for console levels.
const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorGray   = "\x1b[90m"
	colorReset  = "\x1b[0m"
)

// Options selects the sinks of a logger.
type Options struct {
	Level string
	// Console receives human-readable records; nil discards them (the tree
	// view owns the terminal).
	Console zapcore.WriteSyncer
	Color   bool
	// File, when set, receives JSON records rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// FromConfig derives Options from the resolved log settings.
func FromConfig(cfg config.LogConfig, console zapcore.WriteSyncer, color bool) Options {
	return Options{
		Level:      cfg.Level,
		Console:    console,
		Color:      color,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
}

// New builds a logger. The returned closer flushes and releases the file sink.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	var cores []zapcore.Core
	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(consoleEncoder(opts.Color), opts.Console, level))
	}

	var file *lumberjack.Logger
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder(), zapcore.AddSync(file), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nopCloser{}, nil
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("sarifview")
	return logger, closer{logger: logger, file: file}, nil
}

func baseEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	return cfg
}

func jsonEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// consoleEncoder writes one line per record: level, message, then fields.
// Time and logger name are left to the file sink.
func consoleEncoder(color bool) zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.TimeKey = ""
	cfg.NameKey = ""
	cfg.CallerKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = colorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var color string
	switch level {
	case zapcore.DebugLevel:
		color = colorGray
	case zapcore.InfoLevel:
		color = colorBlue
	case zapcore.WarnLevel:
		color = colorYellow
	default:
		color = colorRed
	}
	enc.AppendString(color + strings.ToUpper(level.String()) + colorReset)
}

type closer struct {
	logger *zap.Logger
	file   *lumberjack.Logger
}

func (c closer) Close() error {
	// Sync on a terminal returns EINVAL on some platforms; only the file matters.
	_ = c.logger.Sync()
	if c.file != nil {
		return c.file.Close()
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
