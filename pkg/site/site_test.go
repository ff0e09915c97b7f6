package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogumbreiro/coqdoc-jekyll/internal/coqdoc"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/cleaner"
	"github.com/cogumbreiro/coqdoc-jekyll/pkg/cleaner/tufte"
)

const samplePage = `<div id="page">
<div id="header"></div>
<div id="main">
<h1 class="libtitle">Library Lib.a</h1>
<div class="code">
<span class="id" title="keyword">Definition</span> <span class="id" title="definition">x</span> := 1.<br/>
</div>
<div class="doc">
<a name="lab1"></a><h1 class="section">Intro</h1>
First para.


Second para.
</div>
</div>
<div id="footer">
<hr/><a href="index.html">Index</a><hr/>This page has been generated by <a href="http://coq.inria.fr/">coqdoc</a>
</div>
</div>
`

// fakeGenerator stands in for coqdoc: it writes the configured pages and a
// stylesheet into the target directory.
type fakeGenerator struct {
	pages map[string]string
	err   error
	calls []coqdoc.Invocation
}

func (g *fakeGenerator) Run(ctx context.Context, inv coqdoc.Invocation) error {
	g.calls = append(g.calls, inv)
	for name, body := range g.pages {
		if err := os.WriteFile(filepath.Join(inv.TargetDir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(inv.TargetDir, coqdoc.Stylesheet), []byte("body{}"), 0o644); err != nil {
		return err
	}
	return g.err
}

type failingCleaner struct{}

func (failingCleaner) Clean(string) (string, error) { return "", errors.New("boom") }
func (failingCleaner) Name() string                 { return "failing" }

type upperCleaner struct{}

func (upperCleaner) Clean(s string) (string, error) { return strings.ToUpper(s), nil }
func (upperCleaner) Name() string                    { return "upper" }

// reportingCleaner reports stats without being the tufte cleaner.
type reportingCleaner struct{}

func (reportingCleaner) Clean(s string) (string, error) { return s, nil }
func (reportingCleaner) Name() string                    { return "reporting" }
func (reportingCleaner) CleanWithStats(s string) (*tufte.Result, error) {
	stats := tufte.NewStats()
	stats.DocBlocks = 7
	return &tufte.Result{Content: "reported:" + s, Stats: stats}, nil
}

func writeProject(t *testing.T, content string) (projectFile, targetDir string) {
	t.Helper()
	dir := t.TempDir()
	projectFile = filepath.Join(dir, "_CoqProject")
	require.NoError(t, os.WriteFile(projectFile, []byte(content), 0o644))
	targetDir = filepath.Join(dir, "docs")
	return projectFile, targetDir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNew_Defaults(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, ".", cfg.TargetDir)
	assert.Equal(t, "_CoqProject", cfg.ProjectFile)
	assert.Nil(t, cfg.Extra)
	assert.IsType(t, &coqdoc.Runner{}, s.generator)
	assert.Equal(t, "tufte", s.cleaner.Name())
	assert.Nil(t, s.post)
}

func TestNew_EmptyTargetDir(t *testing.T) {
	_, err := New(WithTargetDir(""))
	assert.Error(t, err)
}

func TestNew_Options(t *testing.T) {
	gen := &fakeGenerator{}
	s, err := New(
		WithTargetDir("out"),
		WithProjectFile("p/_CoqProject"),
		WithExtra("--utf8"),
		WithLight(true),
		WithGallina(true),
		WithIgnoreCoqdocErrors(true),
		WithGenerator(gen),
		WithCleaner(cleaner.NewNoop()),
		WithPostCleaner(upperCleaner{}),
		WithPostCleaner(cleaner.NewNoop()),
		WithFrontMatter(map[string]any{"title": "Docs"}),
	)
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, "out", cfg.TargetDir)
	assert.Equal(t, "p/_CoqProject", cfg.ProjectFile)
	assert.Equal(t, []string{"--utf8"}, cfg.Extra)
	assert.True(t, cfg.Light)
	assert.True(t, cfg.Gallina)
	assert.True(t, cfg.IgnoreCoqdocErrors)
	assert.Same(t, gen, s.generator)
	assert.Equal(t, "chain(upper->noop)", s.post.Name())
	assert.Equal(t, []string{"layout", "title"}, s.frontMatter.Keys())
}

func TestBuild(t *testing.T) {
	projectFile, targetDir := writeProject(t, "-R src Lib\nsrc/a.v\n")
	gen := &fakeGenerator{pages: map[string]string{"Lib.a.html": samplePage}}

	s, err := New(WithProjectFile(projectFile), WithTargetDir(targetDir), WithGenerator(gen), WithGallina(true))
	require.NoError(t, err)

	report, err := s.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	inv := gen.calls[0]
	assert.Equal(t, []string{"-R", "src", "Lib"}, inv.ProjectArgs)
	assert.Equal(t, targetDir, inv.TargetDir)
	assert.Equal(t, []string{"src/a.v"}, inv.Files)
	assert.True(t, inv.Gallina)
	assert.False(t, inv.Light)

	_, err = os.Stat(filepath.Join(targetDir, coqdoc.Stylesheet))
	assert.True(t, os.IsNotExist(err), "stylesheet should be removed")

	page := readFile(t, filepath.Join(targetDir, "Lib.a.html"))
	assert.True(t, strings.HasPrefix(page, "---\nlayout: default\n---\n"), page)
	assert.Contains(t, page, "<article>")
	assert.Contains(t, page, "<section>")
	assert.Contains(t, page, `<a name="lab1"><h1>Intro</h1></a>`)
	assert.Contains(t, page, "<p>Second para.</p>")
	assert.Contains(t, page, `<pre class="code">`)
	assert.NotContains(t, page, "generated by")
	assert.NotContains(t, page, `id="header"`)

	require.Len(t, report.Files, 1)
	res := report.Files[0]
	assert.Equal(t, filepath.Join(targetDir, "Lib.a.html"), res.Path)
	assert.Equal(t, len(samplePage), res.InputBytes)
	require.NotNil(t, res.Stats)
	assert.Equal(t, 1, res.Stats.HeadingsWrapped)
	assert.True(t, res.Stats.FooterRemoved)
	assert.False(t, report.CoqdocFailed)
}

func TestBuild_CoqdocFailureIsFatal(t *testing.T) {
	projectFile, targetDir := writeProject(t, "-R src Lib\nsrc/a.v\n")
	gen := &fakeGenerator{
		pages: map[string]string{"Lib.a.html": samplePage},
		err:   &coqdoc.ExitError{Code: 1},
	}

	s, err := New(WithProjectFile(projectFile), WithTargetDir(targetDir), WithGenerator(gen))
	require.NoError(t, err)

	_, err = s.Build(context.Background())
	var exitErr *coqdoc.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, samplePage, readFile(t, filepath.Join(targetDir, "Lib.a.html")), "pages untouched")
}

func TestBuild_CoqdocFailureIgnored(t *testing.T) {
	projectFile, targetDir := writeProject(t, "-R src Lib\nsrc/a.v\n")
	gen := &fakeGenerator{
		pages: map[string]string{"Lib.a.html": samplePage},
		err:   &coqdoc.ExitError{Code: 1},
	}

	s, err := New(WithProjectFile(projectFile), WithTargetDir(targetDir), WithGenerator(gen), WithIgnoreCoqdocErrors(true))
	require.NoError(t, err)

	report, err := s.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, report.CoqdocFailed)
	assert.Len(t, report.Files, 1)
}

func TestBuild_OtherGeneratorErrorsAreFatal(t *testing.T) {
	projectFile, targetDir := writeProject(t, "src/a.v\n")
	gen := &fakeGenerator{err: coqdoc.ErrNotFound}

	s, err := New(WithProjectFile(projectFile), WithTargetDir(targetDir), WithGenerator(gen), WithIgnoreCoqdocErrors(true))
	require.NoError(t, err)

	_, err = s.Build(context.Background())
	assert.ErrorIs(t, err, coqdoc.ErrNotFound)
}

func TestBuild_MissingPageAborts(t *testing.T) {
	projectFile, targetDir := writeProject(t, "-Q src Lib\nsrc/a.v\nsrc/b.v\nsrc/c.v\n")
	gen := &fakeGenerator{pages: map[string]string{
		"Lib.a.html": samplePage,
		"Lib.c.html": samplePage,
	}}

	s, err := New(WithProjectFile(projectFile), WithTargetDir(targetDir), WithGenerator(gen))
	require.NoError(t, err)

	report, err := s.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "Lib.b.html")

	require.NotNil(t, report)
	assert.Len(t, report.Files, 1)
	assert.Contains(t, readFile(t, filepath.Join(targetDir, "Lib.a.html")), "layout: default")
	assert.Equal(t, samplePage, readFile(t, filepath.Join(targetDir, "Lib.c.html")), "pages after the failure are not touched")
}

func TestBuild_MissingProject(t *testing.T) {
	s, err := New(WithProjectFile(filepath.Join(t.TempDir(), "_CoqProject")), WithGenerator(&fakeGenerator{}))
	require.NoError(t, err)

	_, err = s.Build(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFixFile_CustomCleanersAndFrontMatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0o644))

	s, err := New(
		WithCleaner(cleaner.NewNoop()),
		WithPostCleaner(upperCleaner{}),
		WithFrontMatter(map[string]any{"title": "Lib.a"}),
	)
	require.NoError(t, err)

	res, err := s.FixFile(path)
	require.NoError(t, err)
	assert.Nil(t, res.Stats)
	assert.Equal(t, 9, res.InputBytes)
	assert.Equal(t, 9, res.OutputBytes)
	assert.Equal(t, "---\nlayout: default\ntitle: Lib.a\n---\n<P>HI</P>", readFile(t, path))
}

func TestFixFile_CleanErrorLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0o644))

	s, err := New(WithCleaner(failingCleaner{}))
	require.NoError(t, err)

	_, err = s.FixFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, "<p>hi</p>", readFile(t, path))
}

func TestFixFiles_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0o644))

	s, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := s.FixFiles(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Equal(t, "<p>hi</p>", readFile(t, path))
}

func TestInputs(t *testing.T) {
	projectFile, _ := writeProject(t, "-R src Lib\nsrc/a.v\nsrc/b.v\n")

	s, err := New(WithProjectFile(projectFile))
	require.NoError(t, err)

	inputs, err := s.Inputs()
	require.NoError(t, err)
	assert.Equal(t, []string{projectFile, "src/a.v", "src/b.v"}, inputs)
}

func TestCleanPage(t *testing.T) {
	in := `<div class="doc">Para one.</div>`

	t.Run("default cleaner reports stats", func(t *testing.T) {
		s, err := New()
		require.NoError(t, err)

		body, result, err := s.CleanPage(in)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "<p>Para one.</p>", body)
		assert.Equal(t, 1, result.Stats.DocBlocks)
	})

	t.Run("any cleaner with stats is used", func(t *testing.T) {
		s, err := New(WithCleaner(reportingCleaner{}), WithPostCleaner(upperCleaner{}))
		require.NoError(t, err)

		body, result, err := s.CleanPage("x")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "REPORTED:X", body)
		assert.Equal(t, 7, result.Stats.DocBlocks)
	})

	t.Run("plain cleaner has no stats", func(t *testing.T) {
		s, err := New(WithCleaner(cleaner.NewNoop()))
		require.NoError(t, err)

		body, result, err := s.CleanPage(in)
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, in, body)
	})

	t.Run("post cleaner error", func(t *testing.T) {
		s, err := New(WithPostCleaner(failingCleaner{}))
		require.NoError(t, err)

		_, _, err = s.CleanPage(in)
		assert.ErrorContains(t, err, "boom")
	})
}

func TestFrontMatter(t *testing.T) {
	s, err := New(WithFrontMatter(map[string]any{"title": "Lib"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"layout", "title"}, s.FrontMatter().Keys())
}
