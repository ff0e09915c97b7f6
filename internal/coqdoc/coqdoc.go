// Package coqdoc runs the coqdoc documentation generator.
package coqdoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/logger"
)

const (
	// DefaultBinary is looked up on PATH when no binary is configured.
	DefaultBinary = "coqdoc"

	// Stylesheet is the CSS file coqdoc drops next to the generated pages.
	Stylesheet = "coqdoc.css"
)

// DefaultExtra are the arguments placed between the target directory and the
// source files unless overridden.
var DefaultExtra = []string{"--body-only", "--no-index", "--lib-subtitles", "-s"}

// ErrNotFound is returned when the coqdoc binary cannot be located.
var ErrNotFound = errors.New("coqdoc not found")

// ExitError reports a coqdoc run that finished with a non-zero status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("coqdoc exited with status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Invocation describes one coqdoc run.
type Invocation struct {
	// ProjectArgs come from the first line of the project descriptor.
	ProjectArgs []string

	// TargetDir receives the generated pages.
	TargetDir string

	// Extra replaces DefaultExtra when non-nil.
	Extra []string

	// Light passes -l (only definitions and statements).
	Light bool

	// Gallina passes -g (skip proofs).
	Gallina bool

	// Files are the source files to document.
	Files []string
}

// Args returns the argument list:
// <project args> -d <target> <extra> [-l] [-g] <files>.
func (inv Invocation) Args() []string {
	extra := inv.Extra
	if extra == nil {
		extra = DefaultExtra
	}

	args := make([]string, 0, len(inv.ProjectArgs)+len(extra)+len(inv.Files)+4)
	args = append(args, inv.ProjectArgs...)
	args = append(args, "-d", inv.TargetDir)
	args = append(args, extra...)
	if inv.Light {
		args = append(args, "-l")
	}
	if inv.Gallina {
		args = append(args, "-g")
	}
	return append(args, inv.Files...)
}

// Runner executes coqdoc.
type Runner struct {
	binary string
	stdout io.Writer
	stderr io.Writer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBinary sets the coqdoc executable (a name on PATH or a path).
func WithBinary(binary string) RunnerOption {
	return func(r *Runner) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// WithOutput sets where the subprocess output goes.
func WithOutput(stdout, stderr io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewRunner creates a runner. Output goes to the process stdout/stderr by
// default.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		binary: DefaultBinary,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CommandLine renders the full command for display.
func (r *Runner) CommandLine(inv Invocation) string {
	return strings.Join(append([]string{r.binary}, inv.Args()...), " ")
}

// Run executes coqdoc and waits for it. A non-zero exit is returned as
// *ExitError; a missing binary as ErrNotFound.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	path, err := exec.LookPath(r.binary)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, r.binary)
	}

	logger.Info("running coqdoc", "cmd", r.CommandLine(inv))

	cmd := exec.CommandContext(ctx, path, inv.Args()...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return &ExitError{Code: exitErr.ExitCode(), Err: err}
		}
		if ctx.Err() != nil {
			return fmt.Errorf("coqdoc interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("run coqdoc: %w", err)
	}
	return nil
}

// RemoveStylesheet deletes the stylesheet coqdoc wrote into dir. A missing
// file is not an error.
func RemoveStylesheet(dir string) error {
	err := os.Remove(filepath.Join(dir, Stylesheet))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", Stylesheet, err)
	}
	return nil
}
