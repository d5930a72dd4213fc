package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes each value as an indented JSON document.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
}

// NewJSONWriter creates a JSON writer. An empty indent produces compact JSON.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
	}
}

// Write encodes data followed by a newline.
func (w *JSONWriter) Write(data any) error {
	var out []byte
	var err error
	if w.indent != "" {
		out, err = json.MarshalIndent(data, "", w.indent)
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(out); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL).
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write writes a single value as a JSON line.
func (w *JSONLWriter) Write(data any) error {
	out, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := w.w.Write(out); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.w.Flush()
}
