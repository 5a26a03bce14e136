package index

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rxdocs/rxmcp/internal/docs"
	"github.com/rxdocs/rxmcp/internal/parser"
	"github.com/rxdocs/rxmcp/internal/store"
	"github.com/rxdocs/rxmcp/internal/ui"
)

// Summary reports one completed build.
type Summary struct {
	PagesIndexed      int
	ComponentsIndexed int
	Skipped           int
	SlugCollisions    int
	NameCollisions    int
	GenerationID      string
	ContentHash       string
	Duration          time.Duration
}

// Runner drives the full build: enumerate, parse, rebuild.
type Runner struct {
	store    *store.DocStore
	source   SourceProvider
	renderer ui.Renderer
	logger   *slog.Logger
	workers  int
	strict   bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRenderer attaches a progress renderer.
func WithRenderer(r ui.Renderer) RunnerOption {
	return func(run *Runner) { run.renderer = r }
}

// WithWorkers sets the parse worker count.
func WithWorkers(n int) RunnerOption {
	return func(run *Runner) { run.workers = n }
}

// WithStrictDuplicates makes slug and component-name collisions fail the
// build instead of resolving last-write-wins.
func WithStrictDuplicates(strict bool) RunnerOption {
	return func(run *Runner) { run.strict = strict }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(run *Runner) { run.logger = l }
}

// NewRunner creates a build runner over the given source and store.
func NewRunner(src SourceProvider, st *store.DocStore, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:   st,
		source:  src,
		logger:  slog.Default(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = runtime.NumCPU()
	}
	return r
}

// sourceFile is one enumerated document, content already read.
type sourceFile struct {
	path string
	data []byte
}

// Build runs the full pipeline. On success a new generation serves all
// reads; on any error the previous generation keeps serving untouched.
func (r *Runner) Build(ctx context.Context) (*Summary, error) {
	start := time.Now()
	var skipped atomic.Int64

	if fsp, ok := r.source.(*FSProvider); ok && fsp.OnSkip == nil {
		fsp.OnSkip = func(path string, err error) {
			skipped.Add(1)
			r.logger.Warn("source_file_skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			r.emitError(ui.ErrorEvent{File: path, Err: err, IsWarn: true})
		}
	}

	r.emitProgress(ui.ProgressEvent{Stage: ui.StageScanning, Message: "discovering sources"})

	var files []sourceFile
	err := r.source.Walk(ctx, func(path string, reader io.Reader) error {
		data, err := io.ReadAll(reader)
		if err != nil {
			skipped.Add(1)
			r.logger.Warn("source_file_unreadable",
				slog.String("path", path),
				slog.String("error", err.Error()))
			r.emitError(ui.ErrorEvent{File: path, Err: err, IsWarn: true})
			return nil
		}
		files = append(files, sourceFile{path: path, data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("sources_discovered", slog.Int("files", len(files)))

	// Parse in parallel; results keep enumeration order so duplicate
	// resolution is stable.
	pages := make([]*docs.Page, len(files))
	var parsed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pages[i] = parser.Parse(f.path, string(f.data))
			n := int(parsed.Add(1))
			r.emitProgress(ui.ProgressEvent{
				Stage:       ui.StageParsing,
				Current:     n,
				Total:       len(files),
				CurrentFile: f.path,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.emitProgress(ui.ProgressEvent{Stage: ui.StageIndexing, Message: "building index"})

	result, err := r.store.Rebuild(ctx, pages, store.RebuildOptions{Strict: r.strict})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		PagesIndexed:      result.PageCount,
		ComponentsIndexed: result.ComponentCount,
		Skipped:           int(skipped.Load()),
		SlugCollisions:    result.SlugCollisions,
		NameCollisions:    result.NameCollisions,
		GenerationID:      result.GenerationID,
		ContentHash:       result.ContentHash,
		Duration:          time.Since(start),
	}

	r.emitComplete(ui.CompletionStats{
		Pages:      summary.PagesIndexed,
		Components: summary.ComponentsIndexed,
		Skipped:    summary.Skipped,
		Duration:   summary.Duration,
	})

	r.logger.Info("build_complete",
		slog.Int("pages", summary.PagesIndexed),
		slog.Int("components", summary.ComponentsIndexed),
		slog.Int("skipped", summary.Skipped),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

func (r *Runner) emitProgress(e ui.ProgressEvent) {
	if r.renderer != nil {
		r.renderer.UpdateProgress(e)
	}
}

func (r *Runner) emitError(e ui.ErrorEvent) {
	if r.renderer != nil {
		r.renderer.AddError(e)
	}
}

func (r *Runner) emitComplete(stats ui.CompletionStats) {
	if r.renderer != nil {
		r.renderer.Complete(stats)
	}
}
