package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxdocs/rxmcp/internal/docs"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	p, err := OpenSQLite(filepath.Join(t.TempDir(), "docs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestSQLite_ReplaceAllAndLoadAll(t *testing.T) {
	p := openTestSQLite(t)
	ctx := context.Background()

	builtAt := time.Now().UTC().Truncate(time.Millisecond)
	pages := []*docs.Page{
		componentPage("library/layout/box", "rx.box", "layout", "A box.",
			docs.Property{Name: "padding", Description: "Inner spacing."},
			docs.Property{Name: "margin", Description: "Outer spacing."}),
		testPage("guides/state", "State", "State body."),
	}
	require.NoError(t, p.ReplaceAll(ctx, "gen-1", "hash-1", builtAt, pages))

	loaded, meta, err := p.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "gen-1", meta.GenerationID)
	assert.Equal(t, "hash-1", meta.ContentHash)
	assert.True(t, meta.BuiltAt.Equal(builtAt))

	// Pages come back slug-ordered.
	assert.Equal(t, "guides/state", loaded[0].Slug)
	assert.Equal(t, "library/layout/box", loaded[1].Slug)

	box := loaded[1]
	require.NotNil(t, box.Component)
	assert.Equal(t, "rx.box", box.Component.Name)
	require.Len(t, box.Component.Properties, 2)
	assert.Equal(t, "padding", box.Component.Properties[0].Name)
	assert.Equal(t, "margin", box.Component.Properties[1].Name)
	require.Len(t, box.Sections, 1)
	assert.Equal(t, "rx.box", box.Sections[0].Heading)
}

func TestSQLite_ReplaceAllIsTotal(t *testing.T) {
	p := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, p.ReplaceAll(ctx, "gen-1", "h1", time.Now(), []*docs.Page{
		testPage("old/page", "Old", ""),
	}))
	require.NoError(t, p.ReplaceAll(ctx, "gen-2", "h2", time.Now(), []*docs.Page{
		testPage("new/page", "New", ""),
	}))

	loaded, meta, err := p.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new/page", loaded[0].Slug)
	assert.Equal(t, "gen-2", meta.GenerationID)
}

func TestSQLite_LoadAllEmpty(t *testing.T) {
	p := openTestSQLite(t)

	loaded, meta, err := p.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Empty(t, meta.GenerationID)
}

func TestSQLite_CorruptDatabaseRecreated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sqlite database"), 0o644))

	p, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer p.Close()

	loaded, _, err := p.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// The damaged file was moved aside, not destroyed.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var quarantined bool
	for _, e := range entries {
		if len(e.Name()) > len("docs.db.corrupt.") && e.Name()[:16] == "docs.db.corrupt." {
			quarantined = true
		}
	}
	assert.True(t, quarantined)
}

func TestStore_RestoreFromPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.db")
	ctx := context.Background()

	// First process: build and persist.
	p1, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	s1, err := New(DefaultConfig(), WithPersistence(p1))
	require.NoError(t, err)
	res, err := s1.Rebuild(ctx, []*docs.Page{
		testPage("guides/state", "State", "State management."),
		componentPage("library/layout/box", "rx.box", "layout", "A box."),
	}, RebuildOptions{})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Second process: restore without re-parsing.
	p2, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	s2, err := New(DefaultConfig(), WithPersistence(p2))
	require.NoError(t, err)
	defer s2.Close()

	restored, err := s2.Restore(ctx)
	require.NoError(t, err)
	require.True(t, restored)

	stats := s2.Stats(ctx)
	assert.Equal(t, res.GenerationID, stats.GenerationID)
	assert.Equal(t, res.ContentHash, stats.ContentHash)
	assert.Equal(t, 2, stats.PageCount)

	// The restored generation is fully searchable.
	results, err := s2.Search(ctx, "state management", 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "guides/state", results[0].Slug)

	c, err := s2.GetComponent(ctx, "box")
	require.NoError(t, err)
	assert.Equal(t, "library/layout/box", c.SourceSlug)
}

func TestStore_RestoreWithoutPersistence(t *testing.T) {
	s := newTestStore(t)
	restored, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
}
