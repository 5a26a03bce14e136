package mcp

// SearchDocsInput defines the input schema for the search_docs tool.
type SearchDocsInput struct {
	Query  string `json:"query" jsonschema:"the documentation search query to execute"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, max 50"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of results to skip for paging"`
}

// SearchDocsOutput defines the output schema for the search_docs tool.
type SearchDocsOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"ranked search results"`
}

// SearchResultOutput is a single ranked hit.
type SearchResultOutput struct {
	Slug       string        `json:"slug" jsonschema:"stable page identifier"`
	Title      string        `json:"title" jsonschema:"page title"`
	Snippet    string        `json:"snippet" jsonschema:"plain-text excerpt around the first match"`
	URL        string        `json:"url" jsonschema:"canonical docs URL"`
	Score      float64       `json:"score" jsonschema:"relevance score, higher is better"`
	Rank       int           `json:"rank" jsonschema:"1-based position in result order"`
	Highlights []RangeOutput `json:"highlights,omitempty" jsonschema:"matched byte ranges within the snippet"`
}

// RangeOutput is a half-open byte range within a snippet.
type RangeOutput struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// GetDocInput defines the input schema for the get_doc tool.
type GetDocInput struct {
	Slug string `json:"slug" jsonschema:"exact page slug, e.g. library/forms/button"`
}

// GetDocOutput defines the output schema for the get_doc tool.
type GetDocOutput struct {
	Slug      string           `json:"slug"`
	Title     string           `json:"title"`
	URL       string           `json:"url" jsonschema:"canonical docs URL"`
	Sections  []SectionOutput  `json:"sections" jsonschema:"ordered heading breakdown with original markdown"`
	Component *ComponentOutput `json:"component,omitempty" jsonschema:"component record when this page documents one"`
}

// SectionOutput is one heading-delimited slice of a page.
type SectionOutput struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Body    string `json:"body"`
}

// ListPagesInput defines the input schema for the list_pages tool.
type ListPagesInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"only return slugs starting with this prefix"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of pages, default 100, max 500"`
}

// ListPagesOutput defines the output schema for the list_pages tool.
type ListPagesOutput struct {
	Pages []PageInfoOutput `json:"pages" jsonschema:"slug and title pairs, slug ascending"`
}

// PageInfoOutput is a page listing entry.
type PageInfoOutput struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	URL   string `json:"url" jsonschema:"canonical docs URL"`
}

// ListComponentsInput defines the input schema for the list_components tool.
type ListComponentsInput struct {
	Category string `json:"category,omitempty" jsonschema:"only return components in this category, e.g. layout"`
}

// ListComponentsOutput defines the output schema for the list_components tool.
type ListComponentsOutput struct {
	Components []ComponentOutput `json:"components" jsonschema:"component records, name ascending"`
}

// ComponentOutput is a structured component record.
type ComponentOutput struct {
	Name        string           `json:"name" jsonschema:"canonical dotted component name, e.g. rx.box"`
	Category    string           `json:"category,omitempty"`
	Description string           `json:"description,omitempty"`
	Properties  []PropertyOutput `json:"properties,omitempty" jsonschema:"documented properties in declaration order"`
	SourceSlug  string           `json:"source_slug,omitempty" jsonschema:"slug of the page this component was extracted from"`
	URL         string           `json:"url,omitempty" jsonschema:"canonical URL of the component documentation page"`
}

// PropertyOutput is one documented component property.
type PropertyOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchComponentsInput defines the input schema for the search_components tool.
type SearchComponentsInput struct {
	Query string `json:"query" jsonschema:"the component search query to execute"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, max 50"`
}

// GetComponentInput defines the input schema for the get_component tool.
type GetComponentInput struct {
	Name string `json:"name" jsonschema:"component name, case-insensitive, rx. prefix optional"`
}

// GetStatsInput defines the input schema for the get_stats tool (no parameters).
type GetStatsInput struct{}

// GetStatsOutput defines the output schema for the get_stats tool.
type GetStatsOutput struct {
	PageCount      int    `json:"page_count"`
	ComponentCount int    `json:"component_count"`
	GenerationID   string `json:"index_generation_id" jsonschema:"identifier of the currently served rebuild"`
	ContentHash    string `json:"content_hash" jsonschema:"fingerprint of the indexed corpus"`
	LastBuiltAt    string `json:"last_built_at,omitempty" jsonschema:"RFC 3339 timestamp of the last rebuild"`
}
