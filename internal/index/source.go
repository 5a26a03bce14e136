// Package index implements the build pipeline: enumerate documentation
// sources, parse them in parallel, and publish a new store generation.
package index

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	rxerrors "github.com/rxdocs/rxmcp/internal/errors"
)

// DefaultMaxFileSize bounds a single documentation file. Anything larger
// is almost certainly not hand-written docs.
const DefaultMaxFileSize = 2 * 1024 * 1024

// markdownExtensions are the recognized documentation source extensions.
var markdownExtensions = map[string]bool{
	".md":       true,
	".mdx":      true,
	".markdown": true,
}

// SourceProvider enumerates documentation sources. Paths are relative to
// the provider's root, slash-separated. The reader is only valid for the
// duration of the callback.
type SourceProvider interface {
	Walk(ctx context.Context, fn func(path string, r io.Reader) error) error
}

// FSProvider walks a documentation tree on the local filesystem. Files
// and directories whose name starts with "_" or "." are skipped, as are
// files exceeding MaxFileSize.
type FSProvider struct {
	Root        string
	MaxFileSize int64

	// OnSkip, when set, is told about files that were discovered but not
	// yielded (unreadable, oversized).
	OnSkip func(path string, err error)
}

// NewFSProvider creates a provider over the given docs root.
func NewFSProvider(root string) *FSProvider {
	return &FSProvider{Root: root, MaxFileSize: DefaultMaxFileSize}
}

// Walk implements SourceProvider.
func (p *FSProvider) Walk(ctx context.Context, fn func(path string, r io.Reader) error) error {
	root, err := filepath.Abs(p.Root)
	if err != nil {
		return rxerrors.IOError("failed to resolve docs root", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return rxerrors.New(rxerrors.ErrCodeFileNotFound, "docs root does not exist", err)
	}
	if !info.IsDir() {
		return rxerrors.ValidationError("docs root is not a directory", nil)
	}

	maxSize := p.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			p.skip(root, path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return fs.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		if !markdownExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			p.skip(root, path, err)
			return nil
		}
		if fi.Size() > maxSize {
			p.skip(root, path, rxerrors.New(rxerrors.ErrCodeFileTooLarge, "file exceeds size limit", nil))
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			p.skip(root, path, err)
			return nil
		}
		defer f.Close()

		return fn(relPath(root, path), f)
	})
}

func (p *FSProvider) skip(root, path string, err error) {
	if p.OnSkip != nil {
		p.OnSkip(relPath(root, path), err)
	}
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
