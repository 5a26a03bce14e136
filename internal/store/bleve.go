package store

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
)

// docsAnalyzerName is the custom analyzer for documentation text: unicode
// word segmentation plus lowercasing, no stemming, so exact identifiers
// like "rx.box" stay findable via their parts.
const docsAnalyzerName = "docs_text"

// maxQueryTerms bounds how many terms of a query are considered.
const maxQueryTerms = 16

// createIndexMapping builds the text index mapping: keyword kind field
// for exact filtering, analyzed title and body fields for ranked search.
func createIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()

	// Registration only fails for unknown building blocks; ours are
	// stock bleve components.
	_ = m.AddCustomAnalyzer(docsAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	m.DefaultAnalyzer = docsAnalyzerName

	doc := bleve.NewDocumentMapping()

	kindField := bleve.NewKeywordFieldMapping()
	kindField.Store = false
	doc.AddFieldMappingsAt("kind", kindField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = docsAnalyzerName
	titleField.Store = false
	doc.AddFieldMappingsAt("title", titleField)

	bodyField := bleve.NewTextFieldMapping()
	bodyField.Analyzer = docsAnalyzerName
	bodyField.Store = false
	doc.AddFieldMappingsAt("body", bodyField)

	m.DefaultMapping = doc
	return m
}

// sanitizeQuery reduces arbitrary query input to a bag of literal terms.
// Quoting, boolean operators, and other query syntax are stripped rather
// than parsed, so malformed syntax can never fail a search. Dots and
// underscores survive so dotted component names pass through intact.
func sanitizeQuery(q string) []string {
	q = strings.ToLower(q)

	var sb strings.Builder
	sb.Grow(len(q))
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r > 127:
			sb.WriteRune(r)
		default:
			sb.WriteByte(' ')
		}
	}

	terms := strings.Fields(sb.String())
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		t = strings.Trim(t, "._")
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxQueryTerms {
			break
		}
	}
	return out
}

// buildQuery assembles the ranked query for a sanitized term bag within
// one document kind. Per term: title match (boosted), body match, and a
// body prefix match (down-weighted) for partially typed terms. A document
// must match at least one term; matching more terms scores higher.
func buildQuery(terms []string, kind string, cfg Config) query.Query {
	kindQuery := bleve.NewTermQuery(kind)
	kindQuery.SetField("kind")

	perTerm := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		titleMatch := bleve.NewMatchQuery(term)
		titleMatch.SetField("title")
		titleMatch.SetBoost(cfg.TitleBoost)

		bodyMatch := bleve.NewMatchQuery(term)
		bodyMatch.SetField("body")

		clauses := []query.Query{titleMatch, bodyMatch}

		if isPrefixable(term) {
			bodyPrefix := bleve.NewPrefixQuery(term)
			bodyPrefix.SetField("body")
			bodyPrefix.SetBoost(cfg.PrefixBoost)
			clauses = append(clauses, bodyPrefix)
		}

		perTerm = append(perTerm, bleve.NewDisjunctionQuery(clauses...))
	}

	termsQuery := bleve.NewDisjunctionQuery(perTerm...)
	termsQuery.SetMin(1)

	return bleve.NewConjunctionQuery(kindQuery, termsQuery)
}

// isPrefixable reports whether a term is a plain word that can serve as
// an index-term prefix. Dotted names are analyzed into multiple tokens,
// so they get no prefix clause.
func isPrefixable(term string) bool {
	for _, r := range term {
		isWord := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isWord {
			return false
		}
	}
	return term != ""
}

// newSearchRequest builds a deterministic search request: sorted by score
// descending, then document ID ascending, which for pages equals slug
// ascending.
func newSearchRequest(q query.Query, limit, offset int) *bleve.SearchRequest {
	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.SortBy([]string{"-_score", "_id"})
	req.IncludeLocations = true
	return req
}

// matchedTerms collects the index terms that matched a hit, falling back
// to the query terms when the backend reports no locations.
func matchedTerms(hit *search.DocumentMatch, queryTerms []string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, locations := range hit.Locations {
		for term := range locations {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return queryTerms
	}
	return terms
}
