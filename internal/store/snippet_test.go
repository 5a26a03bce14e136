package store

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxdocs/rxmcp/internal/docs"
)

func TestMakeSnippet_ShortContentUntrimmed(t *testing.T) {
	snippet, highlights := makeSnippet("A short page about routing.", []string{"routing"}, 160)

	assert.Equal(t, "A short page about routing.", snippet)
	require.Len(t, highlights, 1)
	assert.Equal(t, "routing", snippet[highlights[0].Start:highlights[0].End])
}

func TestMakeSnippet_WindowCentersOnFirstMatch(t *testing.T) {
	content := strings.Repeat("filler words before the match ", 30) +
		"the websocket transport reconnects " +
		strings.Repeat("filler words after the match ", 30)

	snippet, highlights := makeSnippet(content, []string{"websocket"}, 120)

	assert.LessOrEqual(t, len(snippet), 120+2*len(ellipsis))
	assert.True(t, strings.HasPrefix(snippet, ellipsis))
	assert.True(t, strings.HasSuffix(snippet, ellipsis))
	assert.Contains(t, snippet, "websocket")
	require.NotEmpty(t, highlights)
}

func TestMakeSnippet_NoMatchFallsBackToHead(t *testing.T) {
	content := "Leading sentence of the page. " + strings.Repeat("trailing filler ", 50)

	snippet, highlights := makeSnippet(content, []string{"absent"}, 80)

	assert.True(t, strings.HasPrefix(snippet, "Leading sentence"))
	assert.Nil(t, highlights)
}

func TestMakeSnippet_CollapsesWhitespace(t *testing.T) {
	snippet, _ := makeSnippet("line one\n\nline   two\tend", nil, 160)
	assert.Equal(t, "line one line two end", snippet)
}

func TestMakeSnippet_CaseShiftingRunesStayValidUTF8(t *testing.T) {
	// U+0130 lowercases to a form one byte longer, so match offsets
	// found in the lowered text drift past the original bytes.
	content := strings.Repeat("İstanbul ", 40) + "websocket transport " + strings.Repeat("trailing filler ", 20)

	snippet, highlights := makeSnippet(content, []string{"websocket"}, 80)

	assert.True(t, utf8.ValidString(snippet))
	for _, h := range highlights {
		assert.GreaterOrEqual(t, h.Start, 0)
		assert.LessOrEqual(t, h.End, len(snippet))
		assert.True(t, utf8.ValidString(snippet[h.Start:h.End]))
	}
}

func TestMakeSnippet_CaseShiftDriftPastContentEnd(t *testing.T) {
	content := strings.Repeat("İ", 200) + " websocket"

	snippet, highlights := makeSnippet(content, []string{"websocket"}, 80)

	assert.True(t, utf8.ValidString(snippet))
	assert.Contains(t, snippet, "websocket")
	require.NotEmpty(t, highlights)
	for _, h := range highlights {
		assert.Equal(t, "websocket", snippet[h.Start:h.End])
	}
}

func TestMakeSnippet_EmptyContent(t *testing.T) {
	snippet, highlights := makeSnippet("   \n  ", []string{"x"}, 160)
	assert.Empty(t, snippet)
	assert.Nil(t, highlights)
}

func TestHighlightRanges_MergesOverlaps(t *testing.T) {
	ranges := highlightRanges("state statement", []string{"state", "statement"})

	// "state" at 0 and 6 overlap with "statement" at 6.
	require.Len(t, ranges, 2)
	assert.Equal(t, docs.Range{Start: 0, End: 5}, ranges[0])
	assert.Equal(t, docs.Range{Start: 6, End: 15}, ranges[1])
}

func TestMergeRanges_SortsAndCoalesces(t *testing.T) {
	out := mergeRanges([]docs.Range{
		{Start: 10, End: 14},
		{Start: 0, End: 4},
		{Start: 12, End: 20},
		{Start: 4, End: 6},
	})

	assert.Equal(t, []docs.Range{
		{Start: 0, End: 6},
		{Start: 10, End: 20},
	}, out)
}
