package mcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rxdocs/rxmcp/internal/docs"
)

func TestFormatSearchResults(t *testing.T) {
	out := FormatSearchResults("button", []docs.SearchResult{
		{Slug: "library/forms/button", Title: "Button", Snippet: "A clickable button.", Score: 1.5, Rank: 1},
	})

	assert.Contains(t, out, `Search Results for "button"`)
	assert.Contains(t, out, "Found 1 result\n")
	assert.Contains(t, out, "`library/forms/button`")
	assert.Contains(t, out, "> A clickable button.")

	empty := FormatSearchResults("nothing", nil)
	assert.Contains(t, empty, "No results found")
}

func TestFormatPage(t *testing.T) {
	page := &docs.Page{
		Slug:  "guides/state",
		Title: "State",
		Sections: []docs.Section{
			{Heading: "State", Level: 1, Body: "Intro text."},
			{Heading: "Vars", Level: 2, Body: "About vars."},
		},
	}

	out := FormatPage(page)
	assert.Contains(t, out, "# State\n")
	assert.Contains(t, out, "## Vars\n")
	assert.Contains(t, out, "About vars.")
}

func TestFormatComponent(t *testing.T) {
	out := FormatComponent(&docs.Component{
		Name:        "rx.box",
		Category:    "layout",
		Description: "A box.",
		Properties:  []docs.Property{{Name: "padding", Description: "Inner spacing."}},
		SourceSlug:  "library/layout/box",
	})

	assert.Contains(t, out, "## rx.box")
	assert.Contains(t, out, "Category: `layout`")
	assert.Contains(t, out, "| padding | Inner spacing. |")
	assert.Contains(t, out, "`library/layout/box`")
}

func TestFormatStats(t *testing.T) {
	empty := FormatStats(docs.Stats{})
	assert.Contains(t, empty, "Index is empty")

	out := FormatStats(docs.Stats{
		PageCount:      3,
		ComponentCount: 1,
		GenerationID:   "gen-1",
		ContentHash:    "abc123",
		LastBuiltAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, out, "Pages: 3")
	assert.Contains(t, out, "`gen-1`")
	assert.Contains(t, out, "2026-08-01T12:00:00Z")
}
