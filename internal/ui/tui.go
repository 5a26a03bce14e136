package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// TUIRenderer provides rich terminal UI using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *indexingModel
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer. Returns an error for non-TTY
// output so the caller can fall back to plain rendering.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	model := newIndexingModel(cfg.DocsRoot)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:   cfg,
		model: model,
		done:  make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	var opts []tea.ProgramOption
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	opts = append(opts, tea.WithContext(ctx))

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(progressUpdateMsg(event))
	}
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Quit()
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			// Unresponsive TUI; do not hang shutdown on it.
		}
	}
	return nil
}

// Message types for bubbletea.
type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats

// indexingModel is the bubbletea model for indexing progress.
type indexingModel struct {
	styles   Styles
	docsRoot string

	spinner  spinner.Model
	bar      progress.Model
	stage    Stage
	current  int
	total    int
	file     string
	errors   []ErrorEvent
	complete *CompletionStats
}

func newIndexingModel(docsRoot string) *indexingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &indexingModel{
		styles:   DefaultStyles(),
		docsRoot: docsRoot,
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient()),
	}
}

func (m *indexingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *indexingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 10

	case progressUpdateMsg:
		m.stage = msg.Stage
		m.current = msg.Current
		m.total = msg.Total
		if msg.CurrentFile != "" {
			m.file = msg.CurrentFile
		}
		return m, nil

	case errorMsg:
		m.errors = append(m.errors, ErrorEvent(msg))
		return m, nil

	case completeMsg:
		stats := CompletionStats(msg)
		m.complete = &stats
		m.stage = StageComplete
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *indexingModel) View() string {
	var b strings.Builder

	header := "rxmcp index"
	if m.docsRoot != "" {
		header += "  " + m.styles.Label.Render(m.docsRoot)
	}
	b.WriteString(m.styles.Header.Render(header) + "\n\n")

	if m.complete != nil {
		b.WriteString(m.styles.Success.Render(fmt.Sprintf(
			"Complete: %d pages, %d components in %s",
			m.complete.Pages, m.complete.Components,
			m.complete.Duration.Round(100*time.Millisecond))))
		if m.complete.Skipped > 0 {
			b.WriteString(m.styles.Warning.Render(fmt.Sprintf("  (%d skipped)", m.complete.Skipped)))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(m.styles.Active.Render(m.stage.String()))
	if m.total > 0 {
		b.WriteString(fmt.Sprintf("  %d/%d\n", m.current, m.total))
		b.WriteString(m.bar.ViewAs(float64(m.current)/float64(m.total)) + "\n")
	} else {
		b.WriteString("\n")
	}

	if m.file != "" {
		b.WriteString(m.styles.Dim.Render(m.file) + "\n")
	}

	if n := len(m.errors); n > 0 {
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("\n%d files skipped\n", n)))
	}

	return b.String()
}
