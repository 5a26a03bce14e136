package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/rxdocs/rxmcp/internal/docs"
)

// FormatSearchResults formats page search results as markdown.
func FormatSearchResults(query string, results []docs.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search Results for %q\n\n", query)
	fmt.Fprintf(&sb, "Found %d result%s\n\n", len(results), plural(len(results)))

	for _, r := range results {
		fmt.Fprintf(&sb, "### %d. %s\n", r.Rank, r.Title)
		fmt.Fprintf(&sb, "`%s` (score %.2f)\n\n", r.Slug, r.Score)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "> %s\n\n", r.Snippet)
		}
	}
	return sb.String()
}

// FormatPage formats a full page as markdown, reconstructed from its
// sections so the original heading structure survives.
func FormatPage(page *docs.Page) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", page.Title)
	fmt.Fprintf(&sb, "Slug: `%s`\n\n", page.Slug)

	for _, sec := range page.Sections {
		if sec.Heading != "" {
			fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", max(sec.Level, 1)), sec.Heading)
		}
		if body := strings.TrimSpace(sec.Body); body != "" {
			sb.WriteString(body + "\n\n")
		}
	}

	if page.Component != nil {
		sb.WriteString("---\n\n")
		sb.WriteString(FormatComponent(page.Component))
	}
	return sb.String()
}

// FormatPageList formats a page listing as markdown.
func FormatPageList(prefix string, pages []docs.PageInfo) string {
	if len(pages) == 0 {
		if prefix != "" {
			return fmt.Sprintf("No pages found under %q", prefix)
		}
		return "No pages indexed"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Pages (%d)\n\n", len(pages))
	for _, p := range pages {
		fmt.Fprintf(&sb, "- `%s`: %s\n", p.Slug, p.Title)
	}
	return sb.String()
}

// FormatComponentList formats a component listing as markdown.
func FormatComponentList(category string, components []*docs.Component) string {
	if len(components) == 0 {
		if category != "" {
			return fmt.Sprintf("No components found in category %q", category)
		}
		return "No components indexed"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Components (%d)\n\n", len(components))
	for _, c := range components {
		fmt.Fprintf(&sb, "- `%s`", c.Name)
		if c.Category != "" {
			fmt.Fprintf(&sb, " [%s]", c.Category)
		}
		if c.Description != "" {
			fmt.Fprintf(&sb, ": %s", c.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatComponent formats one component record as markdown.
func FormatComponent(c *docs.Component) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", c.Name)
	if c.Category != "" {
		fmt.Fprintf(&sb, "Category: `%s`\n\n", c.Category)
	}
	if c.Description != "" {
		sb.WriteString(c.Description + "\n\n")
	}
	if len(c.Properties) > 0 {
		sb.WriteString("| Prop | Description |\n|------|-------------|\n")
		for _, p := range c.Properties {
			fmt.Fprintf(&sb, "| %s | %s |\n", p.Name, p.Description)
		}
		sb.WriteString("\n")
	}
	if c.SourceSlug != "" {
		fmt.Fprintf(&sb, "Documented at `%s`\n", c.SourceSlug)
	}
	return sb.String()
}

// FormatStats formats index statistics as markdown.
func FormatStats(stats docs.Stats) string {
	if stats.GenerationID == "" {
		return "Index is empty. Run `rxmcp index` to build it."
	}

	var sb strings.Builder
	sb.WriteString("## Index Status\n\n")
	fmt.Fprintf(&sb, "- Pages: %d\n", stats.PageCount)
	fmt.Fprintf(&sb, "- Components: %d\n", stats.ComponentCount)
	fmt.Fprintf(&sb, "- Generation: `%s`\n", stats.GenerationID)
	fmt.Fprintf(&sb, "- Content hash: `%s`\n", stats.ContentHash)
	fmt.Fprintf(&sb, "- Last built: %s\n", stats.LastBuiltAt.Format(time.RFC3339))
	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
