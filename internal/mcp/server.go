package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rxdocs/rxmcp/internal/docs"
	"github.com/rxdocs/rxmcp/internal/store"
	"github.com/rxdocs/rxmcp/pkg/version"
)

// Tool-level limit clamps. Transport callers get bounded responses no
// matter what they ask for.
const (
	maxSearchLimit     = 50
	defaultSearchLimit = 10
	maxPageListLimit   = 500
	defaultPageList    = 100
)

// Server bridges MCP clients with the documentation index.
type Server struct {
	mcp    *mcp.Server
	store  *store.DocStore
	logger *slog.Logger
}

// NewServer creates the MCP server and registers all tools.
func NewServer(st *store.DocStore, logger *slog.Logger) (*Server, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:  st,
		logger: logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "rxmcp",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_docs",
		Description: "Full-text search over the documentation corpus. Returns ranked pages with snippets. Title matches rank above body matches; results are deterministic for a given index.",
	}, s.handleSearchDocs)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_doc",
		Description: "Fetch one documentation page by exact slug, with its full section structure and any attached component record.",
	}, s.handleGetDoc)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_pages",
		Description: "List indexed pages (slug and title), optionally filtered by slug prefix. Use to explore the docs tree before fetching pages.",
	}, s.handleListPages)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_components",
		Description: "List indexed UI components, optionally filtered by category. Ordered by name.",
	}, s.handleListComponents)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_components",
		Description: "Search components by name, category, and property text. Use when looking for a component rather than prose documentation.",
	}, s.handleSearchComponents)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_component",
		Description: "Fetch one component record by name. Matching is case-insensitive and the rx. prefix is optional.",
	}, s.handleGetComponent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_stats",
		Description: "Report index statistics: page and component counts, generation ID, content hash, and last build time.",
	}, s.handleGetStats)

	s.logger.Info("mcp_tools_registered", slog.Int("count", 7))
}

func (s *Server) handleSearchDocs(ctx context.Context, _ *mcp.CallToolRequest, input SearchDocsInput) (
	*mcp.CallToolResult,
	SearchDocsOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchDocsOutput{}, NewInvalidParamsError("query parameter is required")
	}

	limit := clamp(input.Limit, defaultSearchLimit, maxSearchLimit)
	results, err := s.store.Search(ctx, input.Query, limit, input.Offset)
	if err != nil {
		return nil, SearchDocsOutput{}, MapError(err)
	}

	output := SearchDocsOutput{Results: make([]SearchResultOutput, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, toSearchResultOutput(r))
	}

	return textResult(FormatSearchResults(input.Query, results)), output, nil
}

func (s *Server) handleGetDoc(ctx context.Context, _ *mcp.CallToolRequest, input GetDocInput) (
	*mcp.CallToolResult,
	GetDocOutput,
	error,
) {
	if input.Slug == "" {
		return nil, GetDocOutput{}, NewInvalidParamsError("slug parameter is required")
	}

	page, err := s.store.GetPage(ctx, input.Slug)
	if err != nil {
		return nil, GetDocOutput{}, MapError(err)
	}

	output := GetDocOutput{
		Slug:     page.Slug,
		Title:    page.Title,
		URL:      s.store.PageURL(page.Slug),
		Sections: make([]SectionOutput, 0, len(page.Sections)),
	}
	for _, sec := range page.Sections {
		output.Sections = append(output.Sections, SectionOutput{
			Heading: sec.Heading,
			Level:   sec.Level,
			Body:    sec.Body,
		})
	}
	if page.Component != nil {
		c := s.toComponentOutput(page.Component)
		output.Component = &c
	}

	return textResult(FormatPage(page)), output, nil
}

func (s *Server) handleListPages(ctx context.Context, _ *mcp.CallToolRequest, input ListPagesInput) (
	*mcp.CallToolResult,
	ListPagesOutput,
	error,
) {
	limit := clamp(input.Limit, defaultPageList, maxPageListLimit)
	pages, err := s.store.ListPages(ctx, input.Prefix, limit)
	if err != nil {
		return nil, ListPagesOutput{}, MapError(err)
	}

	output := ListPagesOutput{Pages: make([]PageInfoOutput, 0, len(pages))}
	for _, p := range pages {
		output.Pages = append(output.Pages, PageInfoOutput{Slug: p.Slug, Title: p.Title, URL: p.URL})
	}

	return textResult(FormatPageList(input.Prefix, pages)), output, nil
}

func (s *Server) handleListComponents(ctx context.Context, _ *mcp.CallToolRequest, input ListComponentsInput) (
	*mcp.CallToolResult,
	ListComponentsOutput,
	error,
) {
	components, err := s.store.ListComponents(ctx, input.Category)
	if err != nil {
		return nil, ListComponentsOutput{}, MapError(err)
	}

	return textResult(FormatComponentList(input.Category, components)),
		ListComponentsOutput{Components: s.toComponentOutputs(components)}, nil
}

func (s *Server) handleSearchComponents(ctx context.Context, _ *mcp.CallToolRequest, input SearchComponentsInput) (
	*mcp.CallToolResult,
	ListComponentsOutput,
	error,
) {
	if input.Query == "" {
		return nil, ListComponentsOutput{}, NewInvalidParamsError("query parameter is required")
	}

	limit := clamp(input.Limit, defaultSearchLimit, maxSearchLimit)
	components, err := s.store.SearchComponents(ctx, input.Query, limit)
	if err != nil {
		return nil, ListComponentsOutput{}, MapError(err)
	}

	return textResult(FormatComponentList("", components)),
		ListComponentsOutput{Components: s.toComponentOutputs(components)}, nil
}

func (s *Server) handleGetComponent(ctx context.Context, _ *mcp.CallToolRequest, input GetComponentInput) (
	*mcp.CallToolResult,
	ComponentOutput,
	error,
) {
	if input.Name == "" {
		return nil, ComponentOutput{}, NewInvalidParamsError("name parameter is required")
	}

	c, err := s.store.GetComponent(ctx, input.Name)
	if err != nil {
		return nil, ComponentOutput{}, MapError(err)
	}

	return textResult(FormatComponent(c)), s.toComponentOutput(c), nil
}

func (s *Server) handleGetStats(ctx context.Context, _ *mcp.CallToolRequest, _ GetStatsInput) (
	*mcp.CallToolResult,
	GetStatsOutput,
	error,
) {
	stats := s.store.Stats(ctx)

	output := GetStatsOutput{
		PageCount:      stats.PageCount,
		ComponentCount: stats.ComponentCount,
		GenerationID:   stats.GenerationID,
		ContentHash:    stats.ContentHash,
	}
	if !stats.LastBuiltAt.IsZero() {
		output.LastBuiltAt = stats.LastBuiltAt.Format(time.RFC3339)
	}

	return textResult(FormatStats(stats)), output, nil
}

// Serve runs the server over stdio until the context is canceled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("mcp_server_stopped")
	return nil
}

func textResult(markdown string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: markdown}},
	}
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func toSearchResultOutput(r docs.SearchResult) SearchResultOutput {
	out := SearchResultOutput{
		Slug:    r.Slug,
		Title:   r.Title,
		Snippet: r.Snippet,
		URL:     r.URL,
		Score:   r.Score,
		Rank:    r.Rank,
	}
	for _, h := range r.Highlights {
		out.Highlights = append(out.Highlights, RangeOutput{Start: h.Start, End: h.End})
	}
	return out
}

func (s *Server) toComponentOutput(c *docs.Component) ComponentOutput {
	out := ComponentOutput{
		Name:        c.Name,
		Category:    c.Category,
		Description: c.Description,
		SourceSlug:  c.SourceSlug,
	}
	if c.SourceSlug != "" {
		out.URL = s.store.PageURL(c.SourceSlug)
	}
	for _, p := range c.Properties {
		out.Properties = append(out.Properties, PropertyOutput{Name: p.Name, Description: p.Description})
	}
	return out
}

func (s *Server) toComponentOutputs(components []*docs.Component) []ComponentOutput {
	out := make([]ComponentOutput, 0, len(components))
	for _, c := range components {
		out = append(out, s.toComponentOutput(c))
	}
	return out
}
