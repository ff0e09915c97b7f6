package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/coqdoc"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/logger"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/output"
	"github.com/cogumbreiro/coqdoc-jekyll/internal/project"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/cleaner"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/cleaner/tufte"
)

// Generator produces raw HTML pages for a project.
type Generator interface {
	Run(ctx context.Context, inv coqdoc.Invocation) error
}

var _ Generator = (*coqdoc.Runner)(nil)

// statsCleaner is implemented by cleaners that report what they did.
type statsCleaner interface {
	CleanWithStats(html string) (*tufte.Result, error)
}

// FileResult describes one rewritten page.
type FileResult struct {
	Path        string          `json:"path" yaml:"path"`
	InputBytes  int             `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int             `json:"output_bytes" yaml:"output_bytes"`
	Stats       *tufte.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Warnings    []tufte.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Report summarizes a build.
type Report struct {
	Files         []FileResult  `json:"files" yaml:"files"`
	CoqdocFailed  bool          `json:"coqdoc_failed,omitempty" yaml:"coqdoc_failed,omitempty"`
	TotalDuration time.Duration `json:"total_duration_ns" yaml:"total_duration"`
}

// Site builds Jekyll pages from a Coq project.
type Site struct {
	config      Config
	generator   Generator
	cleaner     cleaner.Cleaner
	post        cleaner.Cleaner
	frontMatter *output.FrontMatter
}

// New creates a Site.
func New(opts ...Option) (*Site, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.TargetDir == "" {
		return nil, errors.New("target directory is required")
	}

	s := &Site{
		config:      cfg,
		generator:   cfg.Generator,
		cleaner:     cfg.Cleaner,
		frontMatter: output.DefaultFrontMatter(),
	}
	if s.generator == nil {
		s.generator = coqdoc.NewRunner()
	}
	if s.cleaner == nil {
		s.cleaner = tufte.New(nil)
	}
	if len(cfg.PostCleaners) > 0 {
		s.post = cleaner.NewChain(cfg.PostCleaners...)
	}
	s.frontMatter.Merge(cfg.FrontMatter)

	return s, nil
}

// Config returns the effective configuration.
func (s *Site) Config() Config {
	return s.config
}

// Project loads the project descriptor.
func (s *Site) Project() (*project.Project, error) {
	return project.Load(s.config.ProjectFile)
}

// Inputs lists the files whose change should trigger a rebuild: the
// project descriptor followed by every source file.
func (s *Site) Inputs() ([]string, error) {
	prj, err := s.Project()
	if err != nil {
		return nil, err
	}
	return append([]string{s.config.ProjectFile}, prj.Files...), nil
}

// Build runs coqdoc for the project, removes its stylesheet and rewrites
// every generated page. The first page that fails aborts the build.
func (s *Site) Build(ctx context.Context) (*Report, error) {
	start := time.Now()

	prj, err := s.Project()
	if err != nil {
		return nil, err
	}
	if len(prj.Files) == 0 {
		logger.Warn("project lists no source files", "project", s.config.ProjectFile)
	}

	if err := os.MkdirAll(s.config.TargetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create target dir: %w", err)
	}

	report := &Report{}
	inv := coqdoc.Invocation{
		ProjectArgs: prj.Args,
		TargetDir:   s.config.TargetDir,
		Extra:       s.config.Extra,
		Light:       s.config.Light,
		Gallina:     s.config.Gallina,
		Files:       prj.Files,
	}
	if err := s.generator.Run(ctx, inv); err != nil {
		var exitErr *coqdoc.ExitError
		if !errors.As(err, &exitErr) || !s.config.IgnoreCoqdocErrors {
			return nil, err
		}
		logger.Warn("coqdoc failed, continuing", "status", exitErr.Code)
		report.CoqdocFailed = true
	}

	if err := coqdoc.RemoveStylesheet(s.config.TargetDir); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(prj.Files))
	for _, name := range prj.HTMLFiles() {
		paths = append(paths, filepath.Join(s.config.TargetDir, name))
	}

	files, err := s.FixFiles(ctx, paths)
	report.Files = files
	report.TotalDuration = time.Since(start)
	if err != nil {
		return report, err
	}
	return report, nil
}

// FixFiles rewrites existing pages in order, stopping at the first failure.
// Results for the pages already written are returned with the error.
func (s *Site) FixFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.FixFile(path)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// FixFile rewrites one page in place: the body is cleaned and the front
// matter is prepended. The file is left untouched on failure.
func (s *Site) FixFile(path string) (*FileResult, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- page paths come from the project descriptor or the command line
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	body, result, err := s.CleanPage(string(data))
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", path, err)
	}

	if err := output.WriteFile(path, s.frontMatter, body); err != nil {
		return nil, err
	}

	res := &FileResult{
		Path:        path,
		InputBytes:  len(data),
		OutputBytes: len(body),
	}
	if result != nil {
		res.Stats = result.Stats
		res.Warnings = result.Warnings
	}

	log := logger.With("file", path)
	for _, w := range res.Warnings {
		log.Warn(w.Message, "phase", w.Phase, "context", w.Context)
	}
	log.Debug("page rewritten", "input_bytes", res.InputBytes, "output_bytes", res.OutputBytes)

	return res, nil
}

// FrontMatter returns the block prepended to every page.
func (s *Site) FrontMatter() *output.FrontMatter {
	return s.frontMatter
}

// CleanPage runs the page cleaner and the post cleaners over html. The
// result carries stats only when the page cleaner reports them.
func (s *Site) CleanPage(html string) (string, *tufte.Result, error) {
	var (
		body   string
		result *tufte.Result
		err    error
	)
	if sc, ok := s.cleaner.(statsCleaner); ok {
		result, err = sc.CleanWithStats(html)
		if err == nil {
			body = result.Content
		}
	} else {
		body, err = s.cleaner.Clean(html)
	}
	if err != nil {
		return "", nil, err
	}

	if s.post != nil {
		body, err = s.post.Clean(body)
		if err != nil {
			return "", nil, err
		}
	}
	return body, result, nil
}
