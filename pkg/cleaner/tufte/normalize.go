package tufte

import (
	"regexp"
	"slices"
)

// Rule is a named global regex substitution. Replace may reference
// submatches ($0, $1, ...).
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

// Apply runs the substitution over text and reports how many matches were
// actually changed.
func (r Rule) Apply(text string) (string, int) {
	hits := 0
	out := r.Pattern.ReplaceAllStringFunc(text, func(m string) string {
		rep := r.Pattern.ReplaceAllString(m, r.Replace)
		if rep != m {
			hits++
		}
		return rep
	})
	return out, hits
}

// Coqdoc marker vocabulary.
const (
	paragraphSeparator = "NL"
	preSeparator       = "PRE"
)

var collapseBreaks = regexp.MustCompile(`(?:<br/>\n*)+`)

// normalizeRules run on the raw generator output, in order. Later rules
// depend on what earlier ones leave behind: the empty code block only
// appears once its leading breaks are gone.
var normalizeRules = []Rule{
	{Name: "collapse-breaks", Pattern: collapseBreaks, Replace: "<br/>"},
	{Name: "drop-empty-paragraph", Pattern: regexp.MustCompile(`<div class="paragraph">\s*</div>`), Replace: ""},
	{Name: "break-before-close", Pattern: regexp.MustCompile(`(?:<br/>\n*)+</div>`), Replace: "</div>"},
	{Name: "code-leading-break", Pattern: regexp.MustCompile(`<div class="code">\n+<br/>`), Replace: `<div class="code">`},
	{Name: "code-leading-newlines", Pattern: regexp.MustCompile(`<div class="code">\n+(?:<br/>)?`), Replace: `<div class="code">`},
	{Name: "drop-empty-code", Pattern: regexp.MustCompile(`<div class="code"></div>`), Replace: ""},
	{Name: "recollapse-breaks", Pattern: collapseBreaks, Replace: "<br/>"},
}

// NormalizeRules returns the text-normalization rules in application order.
func NormalizeRules() []Rule {
	return slices.Clone(normalizeRules)
}

// Normalize applies the normalization rules to text.
func Normalize(text string) string {
	out, _ := normalize(text, NewStats())
	return out
}

// normalize repeats the rule list until the text is stable. Every rule only
// removes characters, so a round that changes nothing ends the loop.
func normalize(text string, stats *Stats) (string, int) {
	rounds := 0
	for {
		rounds++
		before := text
		for _, r := range normalizeRules {
			var hits int
			text, hits = r.Apply(text)
			stats.RecordRule(r.Name, hits)
		}
		if text == before {
			return text, rounds
		}
	}
}
