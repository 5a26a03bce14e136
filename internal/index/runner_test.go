package index

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rxerrors "github.com/rxdocs/rxmcp/internal/errors"
	"github.com/rxdocs/rxmcp/internal/store"
	"github.com/rxdocs/rxmcp/internal/ui"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestStore(t *testing.T) *store.DocStore {
	t.Helper()
	s, err := store.New(store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBuild_IndexesDocsTree(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "getting-started/installation.md", "# Installation\n\nRun the installer.\n")
	writeDoc(t, root, "library/layout/box.md", `---
components:
  - rx.box
---

# Box

A generic layout container.

## Properties

| Prop | Description |
|------|-------------|
| padding | Inner spacing. |
`)
	writeDoc(t, root, "notes.txt", "not markdown, ignored")
	writeDoc(t, root, "_drafts/wip.md", "# WIP\n")
	writeDoc(t, root, "guides/_internal.md", "# Internal\n")
	writeDoc(t, root, ".hidden/secret.md", "# Secret\n")

	s := newTestStore(t)
	runner := NewRunner(NewFSProvider(root), s)

	summary, err := runner.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PagesIndexed)
	assert.Equal(t, 1, summary.ComponentsIndexed)
	assert.Zero(t, summary.Skipped)
	assert.NotEmpty(t, summary.GenerationID)

	page, err := s.GetPage(context.Background(), "getting-started/installation")
	require.NoError(t, err)
	assert.Equal(t, "Installation", page.Title)

	c, err := s.GetComponent(context.Background(), "rx.box")
	require.NoError(t, err)
	assert.Equal(t, "library/layout/box", c.SourceSlug)
	require.Len(t, c.Properties, 1)
	assert.Equal(t, "padding", c.Properties[0].Name)
}

func TestBuild_EmptyCorpus(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "readme.txt", "nothing indexable here")

	s := newTestStore(t)
	runner := NewRunner(NewFSProvider(root), s)

	_, err := runner.Build(context.Background())
	require.Error(t, err)
	assert.True(t, rxerrors.IsEmptyCorpus(err))
}

func TestBuild_MissingRoot(t *testing.T) {
	s := newTestStore(t)
	runner := NewRunner(NewFSProvider(filepath.Join(t.TempDir(), "absent")), s)

	_, err := runner.Build(context.Background())
	require.Error(t, err)
	assert.True(t, rxerrors.HasCode(err, rxerrors.ErrCodeFileNotFound))
}

func TestBuild_OversizedFileSkipped(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "small.md", "# Small\n\nFits fine.\n")
	writeDoc(t, root, "huge.md", "# Huge\n\n"+string(bytes.Repeat([]byte("x"), 200)))

	s := newTestStore(t)
	provider := NewFSProvider(root)
	provider.MaxFileSize = 64
	runner := NewRunner(provider, s)

	summary, err := runner.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PagesIndexed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestBuild_IdempotentContentHash(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", "# A\n\nAlpha.\n")
	writeDoc(t, root, "b.md", "# B\n\nBeta.\n")

	s := newTestStore(t)
	runner := NewRunner(NewFSProvider(root), s)

	first, err := runner.Build(context.Background())
	require.NoError(t, err)
	second, err := runner.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.NotEqual(t, first.GenerationID, second.GenerationID)

	writeDoc(t, root, "a.md", "# A\n\nChanged.\n")
	third, err := runner.Build(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ContentHash, third.ContentHash)
}

func TestBuild_DuplicateSlugAcrossExtensions(t *testing.T) {
	root := t.TempDir()
	// a.md and a.mdx share the slug "a"; enumeration order is lexical,
	// so the .mdx version wins under last-write-wins.
	writeDoc(t, root, "a.md", "# From MD\n")
	writeDoc(t, root, "a.mdx", "# From MDX\n")

	s := newTestStore(t)
	runner := NewRunner(NewFSProvider(root), s)

	summary, err := runner.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PagesIndexed)
	assert.Equal(t, 1, summary.SlugCollisions)

	page, err := s.GetPage(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "From MDX", page.Title)

	strictRunner := NewRunner(NewFSProvider(root), s, WithStrictDuplicates(true))
	_, err = strictRunner.Build(context.Background())
	require.Error(t, err)
	assert.True(t, rxerrors.IsDuplicateKey(err))
}

func TestBuild_EmitsProgressToRenderer(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", "# A\n")

	var buf bytes.Buffer
	s := newTestStore(t)
	runner := NewRunner(NewFSProvider(root), s,
		WithRenderer(ui.NewPlainRenderer(ui.NewConfig(&buf))),
		WithWorkers(1))

	_, err := runner.Build(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[SCAN]")
	assert.Contains(t, out, "[PARSE] 1/1")
	assert.Contains(t, out, "Complete: 1 pages")
}
