package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter collects entries and writes them as one YAML sequence on Close.
type YAMLWriter struct {
	w       io.Writer
	entries []any
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{w: w, entries: []any{}}
}

func (w *YAMLWriter) Write(entry any) error {
	w.entries = append(w.entries, entry)
	return nil
}

func (w *YAMLWriter) Close() error {
	enc := yaml.NewEncoder(w.w)
	enc.SetIndent(2)
	if err := enc.Encode(w.entries); err != nil {
		return err
	}
	return enc.Close()
}
