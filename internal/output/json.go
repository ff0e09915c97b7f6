package output

import (
	"encoding/json"
	"io"
)

// JSONWriter collects entries and writes them as one JSON array on Close.
type JSONWriter struct {
	w       io.Writer
	indent  string
	entries []any
}

// NewJSONWriter creates a JSON array writer.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{w: w, indent: indent, entries: []any{}}
}

func (w *JSONWriter) Write(entry any) error {
	w.entries = append(w.entries, entry)
	return nil
}

func (w *JSONWriter) Close() error {
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", w.indent)
	return enc.Encode(w.entries)
}

// JSONLWriter writes one JSON object per line as entries arrive.
type JSONLWriter struct {
	enc *json.Encoder
}

// NewJSONLWriter creates a newline-delimited JSON writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w)}
}

func (w *JSONLWriter) Write(entry any) error {
	return w.enc.Encode(entry)
}

func (w *JSONLWriter) Close() error {
	return nil
}
