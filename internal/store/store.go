package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rxdocs/rxmcp/internal/docs"
	rxerrors "github.com/rxdocs/rxmcp/internal/errors"
)

// defaultSearchLimit applies when a caller passes limit <= 0.
const defaultSearchLimit = 10

// DocStore serves all read operations against the current index
// generation and owns the single write operation, Rebuild.
type DocStore struct {
	cfg    Config
	logger *slog.Logger

	// persist, when set, makes generations durable and restorable.
	persist *SQLiteStore

	// cache holds search results keyed by generation, kind, terms, and
	// paging; purged on every swap.
	cache *lru.Cache[string, []docs.SearchResult]

	// writeMu serializes Rebuild and Restore so the persisted generation
	// and the published one always advance in the same order, even when a
	// watcher fires a rebuild while a previous one is still running.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current *generation // nil until the first rebuild or restore
}

// Option configures a DocStore.
type Option func(*DocStore)

// WithPersistence makes the store durable via the given SQLite backend.
func WithPersistence(p *SQLiteStore) Option {
	return func(s *DocStore) { s.persist = p }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *DocStore) { s.logger = l }
}

// New creates an empty DocStore. All lookups fail with not-found and
// searches return empty results until the first Rebuild or Restore.
func New(cfg Config, opts ...Option) (*DocStore, error) {
	if cfg.TitleBoost <= 0 {
		cfg = DefaultConfig()
	}

	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultConfig().CacheSize
	}
	cache, err := lru.New[string, []docs.SearchResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	s := &DocStore{
		cfg:    cfg,
		logger: slog.Default(),
		cache:  cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ready reports whether a generation is being served.
func (s *DocStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// snapshot acquires the current generation for one read operation.
// Returns nil when no generation exists yet. The caller must release a
// non-nil snapshot.
func (s *DocStore) snapshot() *generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	s.current.acquire()
	return s.current
}

// Rebuild replaces the entire index contents with the given page set,
// atomically with respect to concurrent readers: they observe either the
// previous generation or the new one, never a mix. Concurrent rebuilds
// are serialized in arrival order. Duplicate slugs and
// component names resolve last-write-wins unless opts.Strict is set, in
// which case the rebuild fails and the previous generation keeps serving.
func (s *DocStore) Rebuild(ctx context.Context, pages []*docs.Page, opts RebuildOptions) (*RebuildResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deduped, slugCollisions, err := dedupePages(pages, opts.Strict)
	if err != nil {
		return nil, err
	}
	nameCollisions, err := countComponentCollisions(deduped, opts.Strict)
	if err != nil {
		return nil, err
	}

	if len(deduped) == 0 {
		return nil, rxerrors.EmptyCorpus("")
	}

	if slugCollisions+nameCollisions > 0 {
		s.logger.Warn("rebuild_collisions_resolved",
			slog.Int("slug_collisions", slugCollisions),
			slog.Int("name_collisions", nameCollisions))
	}

	id := uuid.NewString()
	hash := fingerprint(deduped)
	builtAt := time.Now().UTC()

	gen, err := newGeneration(id, hash, builtAt, deduped)
	if err != nil {
		return nil, rxerrors.Wrap(rxerrors.ErrCodeInternal, err)
	}

	// Durability before visibility: if persistence fails, readers keep
	// the previous generation and the previous on-disk state survives.
	if s.persist != nil {
		if err := s.persist.ReplaceAll(ctx, id, hash, builtAt, deduped); err != nil {
			gen.retire()
			return nil, err
		}
	}

	s.swap(gen)

	result := &RebuildResult{
		GenerationID:   id,
		ContentHash:    hash,
		PageCount:      len(gen.pages),
		ComponentCount: len(gen.components),
		SlugCollisions: slugCollisions,
		NameCollisions: nameCollisions,
		BuiltAt:        builtAt,
	}

	s.logger.Info("index_generation_published",
		slog.String("generation_id", id),
		slog.String("content_hash", hash),
		slog.Int("pages", result.PageCount),
		slog.Int("components", result.ComponentCount))

	return result, nil
}

// Restore loads the last persisted generation, if any, so a restarted
// process can serve without re-parsing the corpus. Returns false when
// nothing is persisted.
func (s *DocStore) Restore(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.persist == nil {
		return false, nil
	}

	pages, meta, err := s.persist.LoadAll(ctx)
	if err != nil {
		return false, err
	}
	if len(pages) == 0 {
		return false, nil
	}

	gen, err := newGeneration(meta.GenerationID, meta.ContentHash, meta.BuiltAt, pages)
	if err != nil {
		return false, rxerrors.Wrap(rxerrors.ErrCodeInternal, err)
	}
	s.swap(gen)

	s.logger.Info("index_generation_restored",
		slog.String("generation_id", meta.GenerationID),
		slog.Int("pages", len(pages)))
	return true, nil
}

// swap publishes a new generation and retires the old one.
func (s *DocStore) swap(gen *generation) {
	s.mu.Lock()
	old := s.current
	s.current = gen
	s.mu.Unlock()

	s.cache.Purge()
	if old != nil {
		old.retire()
	}
}

// Search executes a ranked full-text query over pages. An empty or
// whitespace-only query yields an empty result, not an error. Scores are
// higher-is-better; ties are broken by slug ascending; Rank is 1-based
// counting from the start of the full (un-offset) result order.
func (s *DocStore) Search(ctx context.Context, query string, limit, offset int) ([]docs.SearchResult, error) {
	limit = s.clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	terms := sanitizeQuery(query)
	if len(terms) == 0 {
		return []docs.SearchResult{}, nil
	}

	gen := s.snapshot()
	if gen == nil {
		return []docs.SearchResult{}, nil
	}
	defer gen.release()

	cacheKey := fmt.Sprintf("%s|%s|%s|%d|%d", gen.id, kindPage, strings.Join(terms, " "), limit, offset)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	req := newSearchRequest(buildQuery(terms, kindPage, s.cfg), limit, offset)
	res, err := gen.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, rxerrors.Wrap(rxerrors.ErrCodeInternal, err)
	}

	results := make([]docs.SearchResult, 0, len(res.Hits))
	for i, hit := range res.Hits {
		page, ok := gen.pages[docKey(hit.ID)]
		if !ok {
			continue
		}
		snippet, highlights := makeSnippet(page.RawContent, matchedTerms(hit, terms), s.cfg.SnippetLength)
		results = append(results, docs.SearchResult{
			Slug:       page.Slug,
			Title:      page.Title,
			Snippet:    snippet,
			URL:        s.PageURL(page.Slug),
			Score:      hit.Score,
			Rank:       offset + i + 1,
			Highlights: highlights,
		})
	}

	s.cache.Add(cacheKey, results)
	return results, nil
}

// PageURL returns the canonical rendered-docs address for a slug, empty
// when no base URL is configured.
func (s *DocStore) PageURL(slug string) string {
	if s.cfg.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + slug
}

// GetPage returns the page with the exact slug.
func (s *DocStore) GetPage(ctx context.Context, slug string) (*docs.Page, error) {
	gen := s.snapshot()
	if gen == nil {
		return nil, rxerrors.NotFound("page", slug)
	}
	defer gen.release()

	page, ok := gen.pages[slug]
	if !ok {
		return nil, rxerrors.NotFound("page", slug)
	}
	return page, nil
}

// ListPages returns slug+title pairs ordered slug-ascending, filtered to
// slugs starting with prefix when given.
func (s *DocStore) ListPages(ctx context.Context, prefix string, limit int) ([]docs.PageInfo, error) {
	gen := s.snapshot()
	if gen == nil {
		return []docs.PageInfo{}, nil
	}
	defer gen.release()

	if limit <= 0 {
		limit = len(gen.slugs)
	}

	infos := make([]docs.PageInfo, 0, min(limit, len(gen.slugs)))
	for _, slug := range gen.slugs {
		if prefix != "" && !strings.HasPrefix(slug, prefix) {
			continue
		}
		infos = append(infos, docs.PageInfo{Slug: slug, Title: gen.pages[slug].Title, URL: s.PageURL(slug)})
		if len(infos) == limit {
			break
		}
	}
	return infos, nil
}

// ListComponents returns components ordered name-ascending, filtered by
// exact category when given.
func (s *DocStore) ListComponents(ctx context.Context, category string) ([]*docs.Component, error) {
	gen := s.snapshot()
	if gen == nil {
		return []*docs.Component{}, nil
	}
	defer gen.release()

	out := make([]*docs.Component, 0, len(gen.names))
	for _, name := range gen.names {
		c := gen.components[strings.ToLower(name)]
		if category != "" && c.Category != category {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// SearchComponents matches components against name, category, and
// property text using the same relevance scheme as Search.
func (s *DocStore) SearchComponents(ctx context.Context, query string, limit int) ([]*docs.Component, error) {
	limit = s.clampLimit(limit)

	terms := sanitizeQuery(query)
	if len(terms) == 0 {
		return []*docs.Component{}, nil
	}

	gen := s.snapshot()
	if gen == nil {
		return []*docs.Component{}, nil
	}
	defer gen.release()

	req := newSearchRequest(buildQuery(terms, kindComponent, s.cfg), limit, 0)
	res, err := gen.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, rxerrors.Wrap(rxerrors.ErrCodeInternal, err)
	}

	out := make([]*docs.Component, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if c, ok := gen.components[strings.ToLower(docKey(hit.ID))]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetComponent returns a component by name, case-insensitively; the
// canonical "rx." prefix is optional.
func (s *DocStore) GetComponent(ctx context.Context, name string) (*docs.Component, error) {
	gen := s.snapshot()
	if gen == nil {
		return nil, rxerrors.NotFound("component", name)
	}
	defer gen.release()

	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := gen.components[key]; ok {
		return c, nil
	}
	if c, ok := gen.components["rx."+key]; ok {
		return c, nil
	}
	return nil, rxerrors.NotFound("component", name)
}

// Stats describes the currently served generation. An empty store
// reports zero counts and no generation ID.
func (s *DocStore) Stats(ctx context.Context) docs.Stats {
	gen := s.snapshot()
	if gen == nil {
		return docs.Stats{}
	}
	defer gen.release()

	return docs.Stats{
		PageCount:      len(gen.pages),
		ComponentCount: len(gen.components),
		GenerationID:   gen.id,
		ContentHash:    gen.hash,
		LastBuiltAt:    gen.builtAt,
	}
}

// Close retires the current generation and closes the persistent backend.
func (s *DocStore) Close() error {
	s.mu.Lock()
	old := s.current
	s.current = nil
	s.mu.Unlock()

	if old != nil {
		old.retire()
	}
	if s.persist != nil {
		return s.persist.Close()
	}
	return nil
}

func (s *DocStore) clampLimit(limit int) int {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if s.cfg.MaxResults > 0 && limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}
	return limit
}

// dedupePages resolves duplicate slugs. Order is preserved; a later page
// replaces an earlier one with the same slug (last write wins) unless
// strict is set.
func dedupePages(pages []*docs.Page, strict bool) ([]*docs.Page, int, error) {
	index := make(map[string]int, len(pages))
	deduped := make([]*docs.Page, 0, len(pages))
	collisions := 0

	for _, p := range pages {
		if p == nil || p.Slug == "" {
			continue
		}
		if at, seen := index[p.Slug]; seen {
			if strict {
				return nil, 0, rxerrors.DuplicateKey("slug", p.Slug)
			}
			deduped[at] = p
			collisions++
			continue
		}
		index[p.Slug] = len(deduped)
		deduped = append(deduped, p)
	}
	return deduped, collisions, nil
}

// countComponentCollisions detects duplicate component names across the
// deduplicated page set. Last-write-wins resolution happens naturally at
// generation build time; strict mode fails here first.
func countComponentCollisions(pages []*docs.Page, strict bool) (int, error) {
	seen := make(map[string]struct{})
	collisions := 0
	for _, p := range pages {
		if p.Component == nil {
			continue
		}
		key := strings.ToLower(p.Component.Name)
		if _, dup := seen[key]; dup {
			if strict {
				return 0, rxerrors.DuplicateKey("component", p.Component.Name)
			}
			collisions++
			continue
		}
		seen[key] = struct{}{}
	}
	return collisions, nil
}
