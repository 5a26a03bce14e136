package parser

import (
	"regexp"
	"strings"
)

// Patterns for markdown normalization. The index should match on semantic
// words, not markup punctuation.
var (
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineCodePattern = regexp.MustCompile("`([^`]*)`")
	boldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	emphasisPattern   = regexp.MustCompile(`\*([^*]+)\*|\b_([^_]+)_\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripMarkdown reduces markdown to plain text: code fences are unwrapped
// (fence lines dropped, code kept so identifiers stay searchable), links
// keep their text, images keep their alt text, emphasis and inline-code
// markers are removed, and whitespace is collapsed to single spaces.
func StripMarkdown(s string) string {
	if s == "" {
		return ""
	}

	s = dropFenceLines(s)
	s = imagePattern.ReplaceAllString(s, "$1")
	s = linkPattern.ReplaceAllString(s, "$1")
	s = inlineCodePattern.ReplaceAllString(s, "$1")
	s = boldPattern.ReplaceAllString(s, "$1$2")
	s = emphasisPattern.ReplaceAllString(s, "$1$2")

	// Table pipes and blockquote markers add no searchable words.
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.ReplaceAll(s, ">", " ")

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// dropFenceLines removes the ``` / ~~~ marker lines while keeping the code
// between them.
func dropFenceLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// FirstSentence extracts a short description from already-stripped text,
// capped at maxLen runes.
func FirstSentence(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			// Sentence ends at punctuation followed by whitespace or EOF.
			if i+1 == len(text) || text[i+1] == ' ' {
				text = text[:i+1]
				break
			}
		}
	}

	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return text
}
