package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testEntry struct {
	File  string `json:"file" yaml:"file"`
	Bytes int    `json:"bytes" yaml:"bytes"`
}

// --- Writer factory ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"jsonl", FormatJSONL, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWriter(t *testing.T) {
	buf := &bytes.Buffer{}

	w, err := NewWriter(buf, FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, &JSONWriter{}, w)

	w, err = NewWriter(buf, FormatJSONL)
	require.NoError(t, err)
	assert.IsType(t, &JSONLWriter{}, w)

	w, err = NewWriter(buf, FormatYAML)
	require.NoError(t, err)
	assert.IsType(t, &YAMLWriter{}, w)

	_, err = NewWriter(buf, FormatText)
	assert.ErrorContains(t, err, "unsupported")
}

// --- Structured writers ---

func TestJSONWriter_Array(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON)
	require.NoError(t, err)

	require.NoError(t, w.Write(testEntry{File: "a.html", Bytes: 10}))
	require.NoError(t, w.Write(testEntry{File: "b.html", Bytes: 20}))
	require.NoError(t, w.Close())

	var got []testEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []testEntry{{"a.html", 10}, {"b.html", 20}}, got)
	assert.Contains(t, buf.String(), "\n  {", "default indent is two spaces")
}

func TestJSONWriter_SingleEntryStillArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "")
	require.NoError(t, w.Write(testEntry{File: "a.html"}))
	require.NoError(t, w.Close())

	assert.Equal(t, `[{"file":"a.html","bytes":0}]`+"\n", buf.String())
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewJSONWriter(buf, "").Close())
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONWriter_WithIndent(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON, WithIndent("\t"))
	require.NoError(t, err)
	require.NoError(t, w.Write(testEntry{File: "a.html"}))
	require.NoError(t, w.Close())

	assert.Contains(t, buf.String(), "\n\t{")
}

func TestJSONLWriter_StreamsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	require.NoError(t, w.Write(testEntry{File: "a.html", Bytes: 1}))
	assert.Equal(t, `{"file":"a.html","bytes":1}`+"\n", buf.String(), "written before Close")

	require.NoError(t, w.Write(testEntry{File: "b.html", Bytes: 2}))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestYAMLWriter_Sequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)
	require.NoError(t, w.Write(testEntry{File: "a.html", Bytes: 3}))
	require.NoError(t, w.Close())

	var got []testEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []testEntry{{"a.html", 3}}, got)
	assert.True(t, strings.HasPrefix(buf.String(), "- file: a.html"))
}

// --- Front matter ---

func TestDefaultFrontMatter(t *testing.T) {
	got, err := DefaultFrontMatter().Render()
	require.NoError(t, err)
	assert.Equal(t, "---\nlayout: default\n---\n", got)
}

func TestFrontMatter_Empty(t *testing.T) {
	got, err := NewFrontMatter().Render()
	require.NoError(t, err)
	assert.Equal(t, "---\n---\n", got)
}

func TestFrontMatter_Order(t *testing.T) {
	fm := DefaultFrontMatter()
	fm.Merge(map[string]any{"title": "Lib.foo", "nav": false, "layout": "page"})

	assert.Equal(t, []string{"layout", "nav", "title"}, fm.Keys())

	got, err := fm.Render()
	require.NoError(t, err)
	assert.Equal(t, "---\nlayout: page\nnav: false\ntitle: Lib.foo\n---\n", got)
}

func TestFrontMatter_GetSet(t *testing.T) {
	fm := NewFrontMatter()
	fm.Set("tags", []string{"coq", "docs"})

	v, ok := fm.Get("tags")
	require.True(t, ok)
	assert.Equal(t, []string{"coq", "docs"}, v)

	_, ok = fm.Get("missing")
	assert.False(t, ok)

	got, err := fm.Render()
	require.NoError(t, err)
	assert.Equal(t, "---\ntags:\n    - coq\n    - docs\n---\n", got)
}

func TestFrontMatter_QuotesAmbiguousScalars(t *testing.T) {
	fm := NewFrontMatter()
	fm.Set("title", "yes")

	got, err := fm.Render()
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: \"yes\"\n---\n", got)
}

// --- Pages ---

func TestWritePage(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WritePage(buf, DefaultFrontMatter(), "<p>Body</p>"))
	assert.Equal(t, "---\nlayout: default\n---\n<p>Body</p>", buf.String())
}

func TestWriteFile_Replaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Lib.a.html")
	require.NoError(t, os.WriteFile(path, []byte("<div>old</div>"), 0o600))

	require.NoError(t, WriteFile(path, DefaultFrontMatter(), "<p>new</p>"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "---\nlayout: default\n---\n<p>new</p>", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "permissions are preserved")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "a.html")
	err := WriteFile(path, DefaultFrontMatter(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.html")
}
