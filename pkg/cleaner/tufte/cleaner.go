package tufte

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Cleaner rewrites coqdoc HTML for Tufte CSS.
// It implements the cleaner.Cleaner interface.
type Cleaner struct {
	config   *Config
	headings []cascadia.Selector
	stats    *Stats
}

// New creates a new Cleaner with the given configuration.
// If config is nil, DefaultConfig() is used. The configuration is expected
// to be valid; see Config.Validate.
func New(config *Config) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}
	headings := make([]cascadia.Selector, 0, len(config.HeadingLevels))
	for _, level := range config.HeadingLevels {
		headings = append(headings, headingSelector(level))
	}
	return &Cleaner{
		config:   config,
		headings: headings,
	}
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "tufte"
}

// Clean rewrites the document. This method implements the cleaner.Cleaner
// interface.
func (c *Cleaner) Clean(html string) (string, error) {
	result, err := c.CleanWithStats(html)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// documentTag detects input that is a whole document rather than the body
// fragment coqdoc writes with --body-only. A doctype counts, so it is kept.
var documentTag = regexp.MustCompile(`(?i)<(?:!doctype|html|body)[\s>]`)

// CleanWithStats rewrites the document and returns detailed stats. Parse
// and render failures are returned as errors; no partial output is produced.
func (c *Cleaner) CleanWithStats(html string) (*Result, error) {
	startTime := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(html)

	normalizeStart := time.Now()
	text, rounds := normalize(html, result.Stats)
	result.Stats.NormalizeRounds = rounds
	result.Stats.NormalizeDuration = time.Since(normalizeStart)

	parseStart := time.Now()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	transformStart := time.Now()
	c.transform(doc, result)
	result.Stats.TransformDuration = time.Since(transformStart)

	outputStart := time.Now()
	output, err := c.generateOutput(doc, documentTag.MatchString(html), result)
	result.Stats.OutputDuration = time.Since(outputStart)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	result.Content = output
	result.Stats.OutputBytes = len(output)
	result.Stats.TotalDuration = time.Since(startTime)
	c.stats = result.Stats

	return result, nil
}

// Stats returns the stats from the last Clean operation.
func (c *Cleaner) Stats() *Stats {
	return c.stats
}

// transform applies the tree operations. Order matters: doc blocks must
// see embedded <pre> elements before code blocks are renamed to <pre>, and
// empty divs are pruned last so they include wrappers emptied by the
// earlier steps.
func (c *Cleaner) transform(doc *goquery.Document, result *Result) {
	c.renameContainers(doc, result)
	c.restructureDocBlocks(doc, result)
	c.renameCodeBlocks(doc, result)
	c.padInlineCode(doc, result)
	c.stripFooter(doc, result)
	c.pruneEmptyDivs(doc, result)
}

// generateOutput serializes the tree and applies the patch-up rules.
func (c *Cleaner) generateOutput(doc *goquery.Document, wholeDocument bool, result *Result) (string, error) {
	var html string
	var err error
	if wholeDocument {
		html, err = doc.Html()
	} else {
		// Skip the html/head/body wrapper the parser adds around fragments
		html, err = doc.Find("body").Html()
	}
	if err != nil {
		return "", err
	}

	if c.config.PatchUp {
		html = patchUp(html, result.Stats)
	}
	return html, nil
}
