// Package docs defines the record model for the documentation index:
// pages, sections, components, and search results. These are pure data
// contracts shared by the parser, the store, and the transports.
package docs

import "time"

// Section is one heading-delimited slice of a page, in document order.
type Section struct {
	// Heading is the heading text, empty for content before the first
	// heading.
	Heading string `json:"heading"`

	// Level is the heading level (1-6), 0 for the pre-heading section.
	Level int `json:"level"`

	// Body is the verbatim markdown body of the section. May be empty:
	// a heading with no body is valid.
	Body string `json:"body"`
}

// Page is one parsed documentation page.
//
// A Page is immutable once constructed. Slug is unique within an index
// generation and stable across rebuilds for an unchanged source path.
type Page struct {
	// Slug is the stable identifier derived from the source path:
	// forward-slash separated, lowercase, no leading/trailing slash,
	// extension stripped (e.g. "library/forms/button").
	Slug string `json:"slug"`

	// Title is the human-readable title: the first level-1 heading, or a
	// title derived from the last slug segment when no heading exists.
	Title string `json:"title"`

	// Sections is the ordered heading breakdown, preserving original
	// markdown formatting for display.
	Sections []Section `json:"sections"`

	// RawContent is the normalized plain text of the page, with markdown
	// emphasis/link syntax stripped. This is what the full-text index and
	// snippet extraction operate on.
	RawContent string `json:"raw_content"`

	// Component is set when this page documents a UI component.
	Component *Component `json:"component,omitempty"`
}

// Property is one documented component property. Order of declaration is
// preserved for display; lookup by name is case-sensitive.
type Property struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Component is a structured component record extracted from a page.
// Name is unique within an index generation.
type Component struct {
	// Name is the canonical dotted component identifier (e.g. "rx.box").
	Name string `json:"name"`

	// Category is the classification tag used for filtered listing
	// (e.g. "layout", "forms").
	Category string `json:"category,omitempty"`

	// Description is a short description extracted from the page.
	Description string `json:"description,omitempty"`

	// Properties maps property names to short descriptions, in the order
	// they appear in the source document.
	Properties []Property `json:"properties,omitempty"`

	// SourceSlug points back at the page the component was extracted
	// from. Lookup-only; the page owns the component, not the reverse.
	SourceSlug string `json:"source_slug,omitempty"`
}

// Range marks a half-open byte range [Start, End) within a snippet where a
// query term matched, so callers can highlight without re-escaping markup.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchResult is one ranked full-text hit. Derived per query, never
// persisted.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`

	// URL is the canonical rendered-docs address for Slug.
	URL string `json:"url"`

	// Score is the relevance score. Higher is better; scores are only
	// comparable within a single result list.
	Score float64 `json:"score"`

	// Rank is the 1-based position in result order.
	Rank int `json:"rank"`

	// Highlights are matched-term ranges within Snippet.
	Highlights []Range `json:"highlights,omitempty"`
}

// PageInfo is a lightweight listing entry.
type PageInfo struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`

	// URL is the canonical rendered-docs address for Slug.
	URL string `json:"url"`
}

// Stats describes the currently served index generation.
type Stats struct {
	PageCount      int `json:"page_count"`
	ComponentCount int `json:"component_count"`

	// GenerationID uniquely identifies one complete rebuild.
	GenerationID string `json:"index_generation_id"`

	// ContentHash fingerprints the indexed corpus; identical source
	// yields an identical hash across rebuilds.
	ContentHash string `json:"content_hash"`

	LastBuiltAt time.Time `json:"last_built_at"`
}
