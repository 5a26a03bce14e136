// Package parser converts raw markdown documentation files into Page
// records: slug, title, heading-delimited sections, normalized text for
// indexing, and an optional embedded Component record.
//
// Parse is total over its input: any byte sequence yields a valid Page.
// Only component extraction can degrade, and it degrades by omission.
package parser

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rxdocs/rxmcp/internal/docs"
)

// headingPattern matches ATX headings at any level.
var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)

// Parse converts one raw markdown document plus its source path into a
// Page. sourcePath is used only to derive the slug and the title fallback;
// it does not need to exist on disk.
func Parse(sourcePath, raw string) *docs.Page {
	slug := SlugFromPath(sourcePath)

	fm, body := extractFrontmatter(raw)
	sections := splitSections(body)

	title := ""
	for _, s := range sections {
		if s.Level == 1 && s.Heading != "" {
			title = s.Heading
			break
		}
	}
	if title == "" {
		title = titleFromSlug(slug)
	}

	page := &docs.Page{
		Slug:       slug,
		Title:      title,
		Sections:   sections,
		RawContent: buildRawContent(title, sections),
	}

	if component := extractComponent(fm, page); component != nil {
		page.Component = component
	}

	return page
}

// SlugFromPath derives the stable page identifier from a source path:
// extension stripped, separators normalized to forward slashes, lowercased,
// no leading or trailing slash. The same path always yields the same slug.
func SlugFromPath(path string) string {
	slug := strings.ReplaceAll(path, "\\", "/")
	slug = strings.TrimPrefix(slug, "./")

	switch strings.ToLower(filepath.Ext(slug)) {
	case ".md", ".mdx", ".markdown":
		slug = slug[:len(slug)-len(filepath.Ext(slug))]
	}

	slug = strings.ToLower(slug)
	return strings.Trim(slug, "/")
}

// titleFromSlug builds a human-readable title from the last slug segment.
func titleFromSlug(slug string) string {
	segment := slug
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		segment = slug[i+1:]
	}
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	if segment == "" {
		return "Untitled"
	}

	words := strings.Fields(segment)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// splitSections breaks markdown into heading-delimited sections in document
// order. Content before the first heading becomes a section with an empty
// heading. Headings inside fenced code blocks are ignored. A heading with
// no body yields a section with an empty body.
func splitSections(content string) []docs.Section {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := strings.Split(content, "\n")

	var sections []docs.Section
	var body []string
	current := docs.Section{} // preamble before the first heading

	flush := func() {
		current.Body = strings.TrimRight(strings.Join(body, "\n"), "\n")
		// Drop an empty preamble; real sections keep empty bodies.
		if current.Level > 0 || current.Heading != "" || strings.TrimSpace(current.Body) != "" {
			sections = append(sections, current)
		}
		body = body[:0]
	}

	var fence string // active fence marker ("```" or "~~~"), empty outside
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if fence != "" {
			body = append(body, line)
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			body = append(body, line)
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			current = docs.Section{Heading: m[2], Level: len(m[1])}
			continue
		}

		body = append(body, line)
	}
	flush()

	return sections
}

// buildRawContent produces the normalized plain text used for full-text
// indexing and snippet extraction: title, headings, and markdown-stripped
// bodies joined with single spaces.
func buildRawContent(title string, sections []docs.Section) string {
	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	for _, s := range sections {
		if s.Heading != "" && s.Heading != title {
			parts = append(parts, s.Heading)
		}
		if text := StripMarkdown(s.Body); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func logSkippedComponent(slug string, reason string, err error) {
	attrs := []any{
		slog.String("slug", slug),
		slog.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.Warn("component_extraction_skipped", attrs...)
}
