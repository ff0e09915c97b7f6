package tufte

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stats captures what the pipeline did to one document.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Text rules
	NormalizeRounds int            `json:"normalize_rounds" yaml:"normalize_rounds"`
	RuleHits        map[string]int `json:"rule_hits" yaml:"rule_hits"` // rule name -> replacements

	// Tree operations
	ContainersRenamed int  `json:"containers_renamed" yaml:"containers_renamed"`
	DocBlocks         int  `json:"doc_blocks" yaml:"doc_blocks"`
	HeadingsWrapped   int  `json:"headings_wrapped" yaml:"headings_wrapped"`
	TextRunsSplit     int  `json:"text_runs_split" yaml:"text_runs_split"`
	ParagraphsAdded   int  `json:"paragraphs_added" yaml:"paragraphs_added"`
	PreSeparators     int  `json:"pre_separators" yaml:"pre_separators"`
	CodeBlocks        int  `json:"code_blocks" yaml:"code_blocks"`
	InlineCodeSpans   int  `json:"inline_code_spans" yaml:"inline_code_spans"`
	FooterRemoved     bool `json:"footer_removed" yaml:"footer_removed"`
	EmptyDivsPruned   int  `json:"empty_divs_pruned" yaml:"empty_divs_pruned"`

	// Timing
	NormalizeDuration time.Duration `json:"normalize_duration_ns" yaml:"normalize_duration"`
	ParseDuration     time.Duration `json:"parse_duration_ns" yaml:"parse_duration"`
	TransformDuration time.Duration `json:"transform_duration_ns" yaml:"transform_duration"`
	OutputDuration    time.Duration `json:"output_duration_ns" yaml:"output_duration"`
	TotalDuration     time.Duration `json:"total_duration_ns" yaml:"total_duration"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		RuleHits: make(map[string]int),
	}
}

// RecordRule records replacements made by a text rule.
func (s *Stats) RecordRule(name string, hits int) {
	if hits > 0 {
		s.RuleHits[name] += hits
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes (%.1f%% reduction)\n",
		s.InputBytes, s.OutputBytes, s.ReductionPercent()))

	sb.WriteString(fmt.Sprintf("Doc blocks: %d (%d headings wrapped, %d runs split into %d extra paragraphs)\n",
		s.DocBlocks, s.HeadingsWrapped, s.TextRunsSplit, s.ParagraphsAdded))

	sb.WriteString(fmt.Sprintf("Code: %d blocks, %d inline spans\n", s.CodeBlocks, s.InlineCodeSpans))

	if s.EmptyDivsPruned > 0 {
		sb.WriteString(fmt.Sprintf("Empty divs pruned: %d\n", s.EmptyDivsPruned))
	}
	if s.FooterRemoved {
		sb.WriteString("Footer removed\n")
	}

	if len(s.RuleHits) > 0 {
		names := make([]string, 0, len(s.RuleHits))
		for name := range s.RuleHits {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", name, s.RuleHits[name]))
		}
		sb.WriteString("Rules: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Timing: normalize=%v, parse=%v, transform=%v, output=%v, total=%v\n",
		s.NormalizeDuration.Round(time.Microsecond),
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during cleaning.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "normalize", "transform", "output"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context" yaml:"context"` // Element that caused the issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the rewritten document.
	Content string `json:"-" yaml:"-"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
