package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes YAML documents. Successive writes are separated by "---".
type YAMLWriter struct {
	w   *bufio.Writer
	enc *yaml.Encoder
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	bw := bufio.NewWriter(w)
	enc := yaml.NewEncoder(bw)
	enc.SetIndent(2)
	return &YAMLWriter{w: bw, enc: enc}
}

// Write encodes data as a YAML document.
func (w *YAMLWriter) Write(data any) error {
	return w.enc.Encode(data)
}

// Close finishes the YAML stream and flushes it.
func (w *YAMLWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}
