// Package store owns persistent storage of pages and components plus the
// full-text index over page content. It serves all query operations and
// the single write operation, Rebuild.
//
// Concurrency model: readers obtain an immutable generation snapshot at
// call start; Rebuild constructs a complete new generation off to the side
// and atomically publishes it. A reader never observes a partially-rebuilt
// index. Retired generations are reference-counted and reclaimed once the
// last reader releases them.
package store

import "time"

// Config tunes ranking, snippets, and caching.
//
// The ranking formula is fixed and documented rather than left to backend
// defaults: per-term term-frequency relevance, a multiplicative TitleBoost
// for title-field matches, a PrefixBoost for prefix matches, and ties
// broken by slug ascending. Scores are higher-is-better.
type Config struct {
	// TitleBoost multiplies title-field matches relative to body matches.
	TitleBoost float64

	// PrefixBoost weights prefix-term matches relative to exact matches.
	PrefixBoost float64

	// SnippetLength is the target snippet window in characters.
	SnippetLength int

	// MaxResults caps the per-query result count.
	MaxResults int

	// CacheSize is the LRU search cache capacity in entries.
	CacheSize int

	// BaseURL is the base for canonical page URLs: <BaseURL>/<slug>.
	BaseURL string
}

// DefaultConfig returns the default store tuning.
func DefaultConfig() Config {
	return Config{
		TitleBoost:    3.0,
		PrefixBoost:   0.5,
		SnippetLength: 160,
		MaxResults:    50,
		CacheSize:     256,
		BaseURL:       "https://reflex.dev/docs",
	}
}

// RebuildOptions controls one Rebuild call.
type RebuildOptions struct {
	// Strict fails the rebuild with a duplicate-key error on the first
	// slug or component-name collision. The default resolves collisions
	// last-write-wins and logs the collision count.
	Strict bool
}

// RebuildResult summarizes a successful rebuild.
type RebuildResult struct {
	GenerationID string
	ContentHash  string
	PageCount    int

	ComponentCount int

	// SlugCollisions and NameCollisions count last-write-wins
	// resolutions (always zero in strict mode).
	SlugCollisions int
	NameCollisions int

	BuiltAt time.Time
}
