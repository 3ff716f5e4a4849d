// Package logging builds the process logger.
//
// Console output is human readable. When a log file is configured, a JSON
// core writing through a rotating lumberjack file is teed alongside it.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dshills/folio/internal/config"
)

// ErrInvalidLevel is returned for a level zap does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// Logger is a zap logger plus the file it may own.
type Logger struct {
	*zap.Logger
	level  zap.AtomicLevel
	closer io.Closer
}

type options struct {
	console io.Writer
}

// Option configures New.
type Option func(*options)

// WithConsole redirects console output, os.Stderr by default. A nil
// writer disables the console core.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// New builds a logger from the logging settings.
func New(cfg config.LoggingConfig, opts ...Option) (*Logger, error) {
	o := options{console: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, cfg.Level)
	}
	level := zap.NewAtomicLevelAt(lvl)

	var cores []zapcore.Core
	if o.console != nil {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.Lock(zapcore.AddSync(o.console)),
			level,
		))
	}

	var closer io.Closer
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = "timestamp"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(enc),
			zapcore.AddSync(rotator),
			level,
		))
		closer = rotator
	}

	if len(cores) == 0 {
		return &Logger{Logger: zap.NewNop(), level: level}, nil
	}
	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	return &Logger{Logger: l, level: level, closer: closer}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	l.level.SetLevel(lvl)
	return nil
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	// Sync on a console bound to a terminal reports EINVAL; ignore it.
	_ = l.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
