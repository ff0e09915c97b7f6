package output

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterFence = "---\n"

// FrontMatter is an ordered set of YAML keys emitted at the top of a page.
type FrontMatter struct {
	keys   []string
	values map[string]any
}

// NewFrontMatter returns an empty front matter block.
func NewFrontMatter() *FrontMatter {
	return &FrontMatter{values: make(map[string]any)}
}

// DefaultFrontMatter returns the block every generated page carries:
//
//	---
//	layout: default
//	---
func DefaultFrontMatter() *FrontMatter {
	fm := NewFrontMatter()
	fm.Set("layout", "default")
	return fm
}

// Set adds or replaces a key. New keys keep insertion order.
func (fm *FrontMatter) Set(key string, value any) {
	if _, ok := fm.values[key]; !ok {
		fm.keys = append(fm.keys, key)
	}
	fm.values[key] = value
}

// Merge sets every key of m. Keys not yet present are appended in sorted
// order so the output does not depend on map iteration.
func (fm *FrontMatter) Merge(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fm.Set(k, m[k])
	}
}

// Keys returns the keys in output order.
func (fm *FrontMatter) Keys() []string {
	return append([]string(nil), fm.keys...)
}

// Get returns the value of key.
func (fm *FrontMatter) Get(key string) (any, bool) {
	v, ok := fm.values[key]
	return v, ok
}

// Render returns the fenced YAML block, ending with a newline.
func (fm *FrontMatter) Render() (string, error) {
	if len(fm.keys) == 0 {
		return frontMatterFence + frontMatterFence, nil
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range fm.keys {
		var value yaml.Node
		if err := value.Encode(fm.values[k]); err != nil {
			return "", fmt.Errorf("front matter key %q: %w", k, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterFence)
	sb.Write(out)
	sb.WriteString(frontMatterFence)
	return sb.String(), nil
}
