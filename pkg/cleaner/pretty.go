package cleaner

import (
	"strings"

	"github.com/yosssi/gohtml"
)

// PrettyCleaner re-indents HTML so generated pages are readable in diffs.
type PrettyCleaner struct{}

// NewPretty creates a new pretty-printing cleaner.
func NewPretty() *PrettyCleaner {
	return &PrettyCleaner{}
}

// Clean formats the markup. Blank input is returned as is.
func (c *PrettyCleaner) Clean(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return html, nil
	}
	return gohtml.Format(html), nil
}

// Name returns the cleaner type.
func (c *PrettyCleaner) Name() string {
	return "pretty"
}
