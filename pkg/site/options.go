// Package site turns a Coq project into Jekyll pages: it runs coqdoc, then
// rewrites every generated page for Tufte CSS and prepends front matter.
package site

import (
	"github.com/cogumbreiro/coqdoc-jekyll/internal/project"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/cleaner"
)

// Config holds the build settings.
type Config struct {
	// TargetDir receives the generated pages.
	TargetDir string

	// ProjectFile is the _CoqProject descriptor.
	ProjectFile string

	// Extra replaces coqdoc.DefaultExtra when non-nil.
	Extra []string

	// Light and Gallina pass -l and -g to coqdoc.
	Light   bool
	Gallina bool

	// IgnoreCoqdocErrors turns a non-zero coqdoc exit into a warning.
	IgnoreCoqdocErrors bool

	// FrontMatter keys are merged over the default `layout: default`.
	FrontMatter map[string]any

	// Generator runs coqdoc. Defaults to coqdoc.NewRunner().
	Generator Generator

	// Cleaner rewrites each page. Defaults to tufte.New(nil).
	Cleaner cleaner.Cleaner

	// PostCleaners run after Cleaner, in order.
	PostCleaners []cleaner.Cleaner
}

// DefaultConfig returns the settings used when no option overrides them.
func DefaultConfig() Config {
	return Config{
		TargetDir:   ".",
		ProjectFile: project.DefaultFile,
	}
}

// Option configures a Site.
type Option func(*Config)

// WithTargetDir sets the output directory.
func WithTargetDir(dir string) Option {
	return func(c *Config) {
		c.TargetDir = dir
	}
}

// WithProjectFile sets the project descriptor path.
func WithProjectFile(path string) Option {
	return func(c *Config) {
		c.ProjectFile = path
	}
}

// WithExtra replaces the default coqdoc arguments.
func WithExtra(args ...string) Option {
	return func(c *Config) {
		c.Extra = append([]string{}, args...)
	}
}

// WithLight passes -l (definitions and statements only).
func WithLight(enabled bool) Option {
	return func(c *Config) {
		c.Light = enabled
	}
}

// WithGallina passes -g (skip proofs).
func WithGallina(enabled bool) Option {
	return func(c *Config) {
		c.Gallina = enabled
	}
}

// WithIgnoreCoqdocErrors keeps going when coqdoc exits non-zero.
func WithIgnoreCoqdocErrors(enabled bool) Option {
	return func(c *Config) {
		c.IgnoreCoqdocErrors = enabled
	}
}

// WithFrontMatter merges extra keys into the page front matter.
func WithFrontMatter(fm map[string]any) Option {
	return func(c *Config) {
		c.FrontMatter = fm
	}
}

// WithGenerator replaces the coqdoc runner.
func WithGenerator(g Generator) Option {
	return func(c *Config) {
		c.Generator = g
	}
}

// WithCleaner replaces the page cleaner.
func WithCleaner(cl cleaner.Cleaner) Option {
	return func(c *Config) {
		c.Cleaner = cl
	}
}

// WithPostCleaner appends a cleaner that runs after the page cleaner.
func WithPostCleaner(cl cleaner.Cleaner) Option {
	return func(c *Config) {
		c.PostCleaners = append(c.PostCleaners, cl)
	}
}
