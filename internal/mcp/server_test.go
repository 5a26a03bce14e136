package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxdocs/rxmcp/internal/docs"
	"github.com/rxdocs/rxmcp/internal/store"
)

func newTestServer(t *testing.T, pages ...*docs.Page) *Server {
	t.Helper()

	st, err := store.New(store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	if len(pages) > 0 {
		_, err = st.Rebuild(context.Background(), pages, store.RebuildOptions{})
		require.NoError(t, err)
	}

	s, err := NewServer(st, nil)
	require.NoError(t, err)
	return s
}

func docPage(slug, title, body string) *docs.Page {
	return &docs.Page{
		Slug:       slug,
		Title:      title,
		Sections:   []docs.Section{{Heading: title, Level: 1, Body: body}},
		RawContent: title + " " + body,
	}
}

func boxPage() *docs.Page {
	p := docPage("library/layout/box", "Box", "A generic layout container.")
	p.Component = &docs.Component{
		Name:        "rx.box",
		Category:    "layout",
		Description: "A generic layout container.",
		Properties:  []docs.Property{{Name: "padding", Description: "Inner spacing."}},
		SourceSlug:  p.Slug,
	}
	return p
}

func TestHandleSearchDocs(t *testing.T) {
	s := newTestServer(t,
		docPage("library/forms/button", "Button", "A clickable element."),
		docPage("guides/forms", "Forms Guide", "Submit with a button."),
	)

	res, out, err := s.handleSearchDocs(context.Background(), nil, SearchDocsInput{Query: "button"})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "library/forms/button", out.Results[0].Slug)
	assert.Equal(t, "https://reflex.dev/docs/library/forms/button", out.Results[0].URL)
	assert.Equal(t, 1, out.Results[0].Rank)
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
}

func TestHandleSearchDocs_RequiresQuery(t *testing.T) {
	s := newTestServer(t, docPage("a", "A", ""))

	_, _, err := s.handleSearchDocs(context.Background(), nil, SearchDocsInput{})
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestHandleSearchDocs_ClampsLimit(t *testing.T) {
	pages := make([]*docs.Page, 0, 60)
	for i := 0; i < 60; i++ {
		pages = append(pages, docPage(slugN(i), "Deploy", "Deploy notes."))
	}
	s := newTestServer(t, pages...)

	_, out, err := s.handleSearchDocs(context.Background(), nil, SearchDocsInput{Query: "deploy", Limit: 1000})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out.Results), maxSearchLimit)
}

func slugN(i int) string {
	return "pages/" + string(rune('a'+i/26)) + string(rune('a'+i%26))
}

func TestHandleGetDoc(t *testing.T) {
	s := newTestServer(t, boxPage())

	res, out, err := s.handleGetDoc(context.Background(), nil, GetDocInput{Slug: "library/layout/box"})
	require.NoError(t, err)
	assert.Equal(t, "Box", out.Title)
	assert.Equal(t, "https://reflex.dev/docs/library/layout/box", out.URL)
	require.Len(t, out.Sections, 1)
	require.NotNil(t, out.Component)
	assert.Equal(t, "rx.box", out.Component.Name)
	assert.Equal(t, "https://reflex.dev/docs/library/layout/box", out.Component.URL)
	require.NotNil(t, res)
}

func TestHandleGetDoc_NotFound(t *testing.T) {
	s := newTestServer(t, docPage("a", "A", ""))

	_, _, err := s.handleGetDoc(context.Background(), nil, GetDocInput{Slug: "missing"})
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeNotFound, mcpErr.Code)
}

func TestHandleListPages(t *testing.T) {
	s := newTestServer(t,
		docPage("guides/state", "State", ""),
		docPage("library/layout/box", "Box", ""),
	)

	_, out, err := s.handleListPages(context.Background(), nil, ListPagesInput{Prefix: "library/"})
	require.NoError(t, err)
	require.Len(t, out.Pages, 1)
	assert.Equal(t, "library/layout/box", out.Pages[0].Slug)
	assert.Equal(t, "https://reflex.dev/docs/library/layout/box", out.Pages[0].URL)
}

func TestHandleComponents(t *testing.T) {
	s := newTestServer(t, boxPage(), docPage("guides/state", "State", ""))

	_, list, err := s.handleListComponents(context.Background(), nil, ListComponentsInput{Category: "layout"})
	require.NoError(t, err)
	require.Len(t, list.Components, 1)
	assert.Equal(t, "rx.box", list.Components[0].Name)

	_, found, err := s.handleSearchComponents(context.Background(), nil, SearchComponentsInput{Query: "layout container"})
	require.NoError(t, err)
	require.Len(t, found.Components, 1)

	_, c, err := s.handleGetComponent(context.Background(), nil, GetComponentInput{Name: "Box"})
	require.NoError(t, err)
	assert.Equal(t, "rx.box", c.Name)
	require.Len(t, c.Properties, 1)
	assert.Equal(t, "padding", c.Properties[0].Name)
}

func TestHandleGetStats(t *testing.T) {
	s := newTestServer(t, boxPage())

	_, out, err := s.handleGetStats(context.Background(), nil, GetStatsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.PageCount)
	assert.Equal(t, 1, out.ComponentCount)
	assert.NotEmpty(t, out.GenerationID)
	assert.NotEmpty(t, out.LastBuiltAt)
}

func TestHandleGetStats_EmptyIndex(t *testing.T) {
	s := newTestServer(t)

	res, out, err := s.handleGetStats(context.Background(), nil, GetStatsInput{})
	require.NoError(t, err)
	assert.Zero(t, out.PageCount)
	assert.Empty(t, out.GenerationID)
	require.NotNil(t, res)
}
