package store

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rxdocs/rxmcp/internal/docs"
)

const ellipsis = "…"

var snippetWhitespace = regexp.MustCompile(`\s+`)

// makeSnippet extracts a bounded window of content centered on the first
// matched term occurrence. Internal whitespace is collapsed, the window is
// trimmed to word boundaries, and matched term positions are returned as
// byte ranges within the snippet so callers can highlight without any
// embedded markup.
func makeSnippet(content string, terms []string, width int) (string, []docs.Range) {
	content = strings.TrimSpace(snippetWhitespace.ReplaceAllString(content, " "))
	if content == "" {
		return "", nil
	}
	if width <= 0 {
		width = 160
	}

	lower := strings.ToLower(content)

	// Locate the earliest occurrence of any term.
	first := -1
	firstLen := 0
	for _, t := range terms {
		if t == "" {
			continue
		}
		if i := strings.Index(lower, t); i >= 0 && (first < 0 || i < first) {
			first = i
			firstLen = len(t)
		}
	}

	// first is an offset into lower, which can be longer than content
	// for runes whose lowercase form has a different byte length.
	if first > len(content) {
		first = len(content)
	}

	start, end := 0, len(content)
	if first >= 0 {
		start = first - (width-firstLen)/2
	}
	if start < 0 {
		start = 0
	}
	if start+width < end {
		end = start + width
	}
	if end-start < width && end == len(content) {
		// Window hit the tail; pull the start back to use full width.
		if start = end - width; start < 0 {
			start = 0
		}
	}

	// Never split a rune at a cut edge.
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	// Trim cut edges to word boundaries.
	if start > 0 {
		if i := strings.IndexByte(content[start:end], ' '); i >= 0 && i < firstGap(first, start) {
			start += i + 1
		}
	}
	if end < len(content) {
		if i := strings.LastIndexByte(content[start:end], ' '); i > 0 {
			end = start + i
		}
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(content) {
		snippet += ellipsis
	}

	return snippet, highlightRanges(snippet, terms)
}

// firstGap bounds how far the start may be advanced without trimming past
// the first matched term.
func firstGap(first, start int) int {
	if first < 0 {
		return 1 << 30
	}
	return first - start
}

// highlightRanges finds all term occurrences within the final snippet.
// Ranges are byte offsets, non-overlapping, in ascending order.
func highlightRanges(snippet string, terms []string) []docs.Range {
	lower := strings.ToLower(snippet)

	var ranges []docs.Range
	for _, t := range terms {
		if t == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(lower[from:], t)
			if i < 0 {
				break
			}
			ranges = append(ranges, docs.Range{Start: from + i, End: from + i + len(t)})
			from += i + len(t)
		}
	}
	if ranges = clampRanges(ranges, snippet); len(ranges) == 0 {
		return nil
	}

	return mergeRanges(ranges)
}

// clampRanges bounds offsets found in the lowered text to valid rune
// boundaries of the original snippet, dropping ranges that collapse.
func clampRanges(ranges []docs.Range, snippet string) []docs.Range {
	out := ranges[:0]
	for _, r := range ranges {
		if r.Start > len(snippet) {
			continue
		}
		if r.End > len(snippet) {
			r.End = len(snippet)
		}
		for r.Start > 0 && !utf8.RuneStart(snippet[r.Start]) {
			r.Start--
		}
		for r.End < len(snippet) && !utf8.RuneStart(snippet[r.End]) {
			r.End++
		}
		if r.End > r.Start {
			out = append(out, r)
		}
	}
	return out
}

// mergeRanges sorts and coalesces overlapping ranges.
func mergeRanges(ranges []docs.Range) []docs.Range {
	for i := 1; i < len(ranges); i++ {
		for j := i; j > 0 && ranges[j].Start < ranges[j-1].Start; j-- {
			ranges[j], ranges[j-1] = ranges[j-1], ranges[j]
		}
	}

	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
