// Package logging builds the application's structured logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cookingbylea/recipes/backend/config"
)

// Options configures New.
type Options struct {
	Level   string
	Format  string
	File    string
	Service string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// OTLPEndpoint enables log export; the exporter itself reads the
	// standard OTEL_EXPORTER_OTLP_* variables.
	OTLPEndpoint string

	// Stdout replaces os.Stdout, mainly for tests.
	Stdout io.Writer
}

// ShutdownFunc flushes and closes log sinks.
type ShutdownFunc func(context.Context) error

// New returns a logger writing to stdout, an optional rotated file and an
// optional OTLP pipeline.
func New(ctx context.Context, opts Options) (*slog.Logger, ShutdownFunc, error) {
	level := ParseLevel(opts.Level)

	var writers []io.Writer
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	writers = append(writers, stdout)

	var rotator *lumberjack.Logger
	if opts.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		writers = append(writers, rotator)
	}

	out := io.MultiWriter(writers...)
	handlerOpts := &slog.HandlerOptions{Level: level}

	var local slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		local = slog.NewTextHandler(out, handlerOpts)
	} else {
		local = slog.NewJSONHandler(out, handlerOpts)
	}

	handlers := []slog.Handler{local}
	var provider *sdklog.LoggerProvider
	if opts.OTLPEndpoint != "" {
		exporter, err := otlploghttp.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		provider = sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)))
		handlers = append(handlers, &levelGate{
			level:   level,
			Handler: otelslog.NewHandler(opts.Service, otelslog.WithLoggerProvider(provider)),
		})
	}

	logger := slog.New(Fanout(handlers...))
	if opts.Service != "" {
		logger = logger.With(slog.String("service", opts.Service))
	}

	shutdown := func(ctx context.Context) error {
		var firstErr error
		if provider != nil {
			if err := provider.Shutdown(ctx); err != nil {
				firstErr = err
			}
		}
		if rotator != nil {
			if err := rotator.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	return logger, shutdown, nil
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a child logger tagged with a component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", name))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type levelGate struct {
	slog.Handler
	level slog.Level
}

func (g *levelGate) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= g.level && g.Handler.Enabled(ctx, l)
}

func (g *levelGate) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelGate{Handler: g.Handler.WithAttrs(attrs), level: g.level}
}

func (g *levelGate) WithGroup(name string) slog.Handler {
	return &levelGate{Handler: g.Handler.WithGroup(name), level: g.level}
}

// FromConfig builds the process logger from the loaded configuration.
func FromConfig(ctx context.Context, cfg *config.Config) (*slog.Logger, ShutdownFunc, error) {
	return New(ctx, Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		File:         cfg.LogFile,
		Service:      cfg.ServiceName,
		MaxSizeMB:    cfg.LogMaxSizeMB,
		MaxBackups:   cfg.LogMaxBackups,
		MaxAgeDays:   cfg.LogMaxAgeDays,
		Compress:     cfg.LogCompress,
		OTLPEndpoint: cfg.OTLPLogsEndpoint,
	})
}
