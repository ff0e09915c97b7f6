// Package cleaner defines the contract shared by every HTML transformation
// applied to coqdoc output before it is published.
package cleaner

// Cleaner rewrites a whole HTML document.
type Cleaner interface {
	// Clean returns the rewritten document. An error means the input could
	// not be processed and nothing should be written.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
