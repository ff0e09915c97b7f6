// Package tufte rewrites coqdoc HTML into the markup expected by Tufte CSS.
//
// The pipeline runs in four stages: an ordered list of regex rules
// normalizes the raw text, the DOM is restructured (containers renamed, doc
// blocks turned into paragraphs, code blocks renamed, the generator footer
// stripped, empty divs pruned), the tree is serialized, and a second list of
// regex rules patches paragraph boundaries around headings and code.
package tufte

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Variant names a preset pipeline.
type Variant string

const (
	// VariantTufte is the complete pipeline: text runs are split into
	// paragraphs and the serialized output is patched up.
	VariantTufte Variant = "tufte"

	// VariantSimple treats every doc block as a single paragraph and skips
	// the text patch-up.
	VariantSimple Variant = "simple"
)

// DefaultFooterMarker is the prefix of the text coqdoc appends to each page.
const DefaultFooterMarker = "This page has been generated"

// Config controls which restructuring steps run.
type Config struct {
	// HeadingLevels lists the heading levels whose preceding anchor is moved
	// to wrap the heading.
	HeadingLevels []int `json:"heading_levels" yaml:"heading_levels" validate:"required,min=1,dive,min=1,max=6"`

	// SplitTextRuns splits doc text on two or more blank lines.
	SplitTextRuns bool `json:"split_text_runs" yaml:"split_text_runs"`

	// MarkPreBlocks inserts a separator after preformatted blocks inside doc
	// text so prose can resume in a new paragraph.
	MarkPreBlocks bool `json:"mark_pre_blocks" yaml:"mark_pre_blocks"`

	// KeepCodeClass keeps class="code" on the renamed code blocks.
	KeepCodeClass bool `json:"keep_code_class" yaml:"keep_code_class"`

	// PatchUp enables the text rules applied after serialization.
	PatchUp bool `json:"patch_up" yaml:"patch_up"`

	// FooterMarker is the prefix identifying the generator footer text.
	FooterMarker string `json:"footer_marker" yaml:"footer_marker" validate:"required"`
}

// DefaultConfig returns the complete pipeline.
func DefaultConfig() *Config {
	return &Config{
		HeadingLevels: []int{1, 2},
		SplitTextRuns: true,
		MarkPreBlocks: true,
		KeepCodeClass: true,
		PatchUp:       true,
		FooterMarker:  DefaultFooterMarker,
	}
}

// PresetSimple returns the reduced pipeline: three heading levels, one
// paragraph per doc block, bare <pre> code blocks and no patch-up.
func PresetSimple() *Config {
	return &Config{
		HeadingLevels: []int{1, 2, 3},
		FooterMarker:  DefaultFooterMarker,
	}
}

// ForVariant returns the preset for a variant name. The empty name selects
// the default.
func ForVariant(v Variant) (*Config, error) {
	switch v {
	case VariantTufte, "":
		return DefaultConfig(), nil
	case VariantSimple:
		return PresetSimple(), nil
	default:
		return nil, fmt.Errorf("unknown variant: %s (use %q or %q)", v, VariantTufte, VariantSimple)
	}
}

var validate = validator.New()

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid tufte config: %w", err)
	}
	return nil
}
