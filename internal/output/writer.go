// Package output serializes scraped records to files.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Extension returns the file extension, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Writer serializes values to an underlying stream.
type Writer interface {
	// Write outputs one value: a whole document for JSON and YAML, one line
	// for JSONL.
	Write(data any) error

	// Close flushes buffered output.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	indent string
}

// WithIndent sets the JSON indentation string. Empty means compact output.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// DefaultIndent is four spaces, the layout the data files have always used.
const DefaultIndent = "    "

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{indent: DefaultIndent}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
