package tufte

import (
	"regexp"
	"slices"
)

// patchRules turn the separator placeholders left in the tree into real
// paragraph boundaries once the document is text again.
var patchRules = []Rule{
	{Name: "paragraph-separator", Pattern: regexp.MustCompile(`<br class="` + paragraphSeparator + `"/>`), Replace: "</p><p>"},
	{Name: "tt-open", Pattern: regexp.MustCompile(`<tt>`), Replace: "<code>"},
	{Name: "tt-close", Pattern: regexp.MustCompile(`</tt>`), Replace: "</code>"},
	{Name: "close-before-heading", Pattern: regexp.MustCompile(`<a\b[^>]*><h[1-9]>`), Replace: "</p>$0"},
	{Name: "open-after-heading", Pattern: regexp.MustCompile(`</h[1-9]></a>`), Replace: "$0<p>"},
	{Name: "drop-empty-paragraph", Pattern: regexp.MustCompile(`<p></p>`), Replace: ""},
	{Name: "close-before-pre", Pattern: regexp.MustCompile(`<pre>`), Replace: "</p><pre>"},
	{Name: "pre-separator", Pattern: regexp.MustCompile(`</pre><br class="` + preSeparator + `"/>`), Replace: "</pre><p>"},
}

// PatchRules returns the post-serialization rules in application order.
func PatchRules() []Rule {
	return slices.Clone(patchRules)
}

func patchUp(text string, stats *Stats) string {
	for _, r := range patchRules {
		var hits int
		text, hits = r.Apply(text)
		stats.RecordRule("patch:"+r.Name, hits)
	}
	return text
}
