// Package logger provides the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	current *slog.Logger
	mu      sync.RWMutex
)

func init() {
	current = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Options configures the logger.
type Options struct {
	Debug  bool      // Enable debug level logging
	Quiet  bool      // Only show errors
	Format Format    // text (default) or json
	Output io.Writer // Output destination (default: stderr)
}

// ParseFormat validates a --log-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported log format: %q (use text or json)", s)
	}
}

// Init replaces the logger according to opts. Quiet wins over Debug.
func Init(opts Options) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.Quiet {
		level = slog.LevelError
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	mu.Lock()
	current = slog.New(handler)
	mu.Unlock()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Debug logs a debug message.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs an info message.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger { return get().With(args...) }

// Printf returns a printf-style sink that logs at debug level under the given
// source name. It matches the signature chromedp expects for its log options.
func Printf(source string) func(string, ...any) {
	return func(format string, args ...any) {
		get().Debug(fmt.Sprintf(format, args...), "source", source)
	}
}
