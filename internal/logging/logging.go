// Package logging builds the process logger: zap underneath, exposed to the
// rest of mreks as a logr.Logger.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format is a log encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// AvailableFormats lists the accepted formats.
var AvailableFormats = []Format{FormatConsole, FormatJSON}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range AvailableFormats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown log format %q, expected one of %v", s, AvailableFormats)
}

// Options configure the logger.
type Options struct {
	Debug  bool
	Format Format
}

// New creates a zap logger writing to stderr.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Debug {
		// logr V(1) maps to zap level -1.
		level = zap.NewAtomicLevelAt(zapcore.Level(-1))
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := string(opts.Format)
	if opts.Format == "" || opts.Format == FormatConsole {
		encoding = string(FormatConsole)
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg := zap.Config{
		Level:            level,
		Development:      opts.Debug,
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

// NewLogr wraps a zap logger.
func NewLogr(raw *zap.Logger) logr.Logger {
	return zapr.NewLogger(raw)
}
