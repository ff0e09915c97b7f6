// Package project reads Coq project descriptors (_CoqProject files) and
// derives the names of the HTML pages coqdoc generates for them.
package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// DefaultFile is the conventional project descriptor name.
const DefaultFile = "_CoqProject"

var (
	// ErrEmptyProject is returned when the descriptor has no argument line.
	ErrEmptyProject = errors.New("project file is empty")

	// ErrMalformedProject is returned when a -R/-Q mapping is incomplete.
	ErrMalformedProject = errors.New("malformed project file")
)

// Project is a parsed project descriptor.
type Project struct {
	// Args are the generator arguments from the first line.
	Args []string

	// Files are the source files, one per remaining line.
	Files []string

	// BaseDir and BasePackage come from a leading -R/-Q mapping.
	BaseDir     string
	BasePackage string
}

// New builds a project from generator arguments and source files. When the
// arguments start with -R or -Q, the following two arguments set the base
// directory and the logical package name.
func New(args, files []string) (*Project, error) {
	p := &Project{Args: args, Files: files}
	if len(args) > 0 && (args[0] == "-R" || args[0] == "-Q") {
		if len(args) < 3 {
			return nil, fmt.Errorf("%w: %s needs a directory and a package name", ErrMalformedProject, args[0])
		}
		p.BaseDir = args[1]
		p.BasePackage = args[2]
	}
	return p, nil
}

// Load opens a project descriptor and parses it.
func Load(path string) (*Project, error) {
	f, err := os.Open(path) //#nosec G304 -- CLI tool reads a user-specified project file
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	return p, nil
}

// Parse reads a descriptor: the first line is a shell-quoted argument list,
// every other non-blank line not starting with '#' is a source path.
func Parse(r io.Reader) (*Project, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, ErrEmptyProject
	}

	args, err := shlex.Split(sc.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProject, err)
	}

	var files []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		files = append(files, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return New(args, files)
}

// HTMLFiles returns the page name for every source file, in order.
func (p *Project) HTMLFiles() []string {
	names := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		names = append(names, p.HTMLName(f))
	}
	return names
}

// HTMLName derives the page coqdoc writes for a source file: the base
// directory is stripped, the remaining path separators become dots, the
// package name is prepended and the extension is replaced by .html.
//
//	base "src/", package "Lib": src/foo/bar.v -> Lib.foo.bar.html
func (p *Project) HTMLName(src string) string {
	name := strings.TrimSuffix(src, filepath.Ext(src))
	if p.BaseDir != "" {
		name = strings.TrimPrefix(name, p.BaseDir)
	}
	name = strings.TrimPrefix(name, string(filepath.Separator))
	name = strings.ReplaceAll(name, string(filepath.Separator), ".")
	if p.BasePackage != "" {
		name = p.BasePackage + "." + name
	}
	return name + ".html"
}
