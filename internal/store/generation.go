package store

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/rxdocs/rxmcp/internal/docs"
)

// Document kinds within the shared text index.
const (
	kindPage      = "page"
	kindComponent = "component"
)

// generation is one complete, immutable snapshot of the index. It is
// write-once: built, published, retired, reclaimed.
type generation struct {
	id      string
	hash    string
	builtAt time.Time

	pages map[string]*docs.Page
	slugs []string // sorted ascending

	components map[string]*docs.Component // keyed by lowercased name
	names      []string                   // sorted canonical names

	index bleve.Index // mem-only full-text index over pages and components

	// refs counts the store's own reference plus active readers.
	// The bleve index is closed when a retired generation's count
	// reaches zero.
	refs    atomic.Int64
	retired atomic.Bool
}

// indexedDoc is the document shape stored in the text index.
type indexedDoc struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// newGeneration builds a snapshot from already-deduplicated pages. The
// caller owns the id/hash/builtAt metadata so a persisted generation can
// be restored byte-identically.
func newGeneration(id, hash string, builtAt time.Time, pages []*docs.Page) (*generation, error) {
	g := &generation{
		id:         id,
		hash:       hash,
		builtAt:    builtAt,
		pages:      make(map[string]*docs.Page, len(pages)),
		components: make(map[string]*docs.Component),
	}
	g.refs.Store(1)

	idx, err := bleve.NewMemOnly(createIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create text index: %w", err)
	}

	batch := idx.NewBatch()
	for _, p := range pages {
		g.pages[p.Slug] = p
		g.slugs = append(g.slugs, p.Slug)

		if err := batch.Index(docID(kindPage, p.Slug), indexedDoc{
			Kind:  kindPage,
			Title: p.Title,
			Body:  p.RawContent,
		}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index page %s: %w", p.Slug, err)
		}

		if c := p.Component; c != nil {
			g.components[strings.ToLower(c.Name)] = c

			if err := batch.Index(docID(kindComponent, c.Name), indexedDoc{
				Kind:  kindComponent,
				Title: c.Name,
				Body:  componentText(c),
			}); err != nil {
				_ = idx.Close()
				return nil, fmt.Errorf("failed to index component %s: %w", c.Name, err)
			}
		}
	}

	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to build text index: %w", err)
	}

	sort.Strings(g.slugs)
	for _, c := range g.components {
		g.names = append(g.names, c.Name)
	}
	sort.Strings(g.names)
	g.index = idx
	return g, nil
}

// docID composes the text-index document ID. Page IDs sort by slug, so a
// backend tie-break on ID equals the documented slug-ascending tie-break.
func docID(kind, key string) string {
	return kind + "/" + key
}

// docKey strips the kind prefix from a text-index document ID.
func docKey(id string) string {
	if i := strings.IndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// componentText is the searchable body of a component: name, category,
// and property names with descriptions.
func componentText(c *docs.Component) string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	if c.Category != "" {
		sb.WriteByte(' ')
		sb.WriteString(c.Category)
	}
	if c.Description != "" {
		sb.WriteByte(' ')
		sb.WriteString(c.Description)
	}
	for _, p := range c.Properties {
		sb.WriteByte(' ')
		sb.WriteString(p.Name)
		if p.Description != "" {
			sb.WriteByte(' ')
			sb.WriteString(p.Description)
		}
	}
	return sb.String()
}

// acquire takes a reader reference. The caller must release it.
func (g *generation) acquire() {
	g.refs.Add(1)
}

// release drops a reference, reclaiming the text index once the
// generation is retired and unreferenced.
func (g *generation) release() {
	if g.refs.Add(-1) == 0 && g.retired.Load() {
		_ = g.index.Close()
	}
}

// retire marks the generation as superseded and drops the store's own
// reference.
func (g *generation) retire() {
	g.retired.Store(true)
	g.release()
}

// fingerprint hashes the full indexed content of a page set. Pages are
// hashed in slug order so the same corpus always produces the same value,
// independent of enumeration order.
func fingerprint(pages []*docs.Page) string {
	sorted := make([]*docs.Page, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slug < sorted[j].Slug })

	h := xxhash.New()
	for _, p := range sorted {
		_, _ = h.WriteString(p.Slug)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(p.Title)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(p.RawContent)
		_, _ = h.WriteString("\x00")
		for _, s := range p.Sections {
			_, _ = h.WriteString(s.Heading)
			_, _ = h.WriteString("\x01")
			_, _ = h.WriteString(s.Body)
			_, _ = h.WriteString("\x01")
		}
		if c := p.Component; c != nil {
			_, _ = h.WriteString(c.Name)
			_, _ = h.WriteString("\x02")
			_, _ = h.WriteString(c.Category)
			_, _ = h.WriteString("\x02")
			for _, prop := range c.Properties {
				_, _ = h.WriteString(prop.Name)
				_, _ = h.WriteString("=")
				_, _ = h.WriteString(prop.Description)
				_, _ = h.WriteString("\x02")
			}
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
