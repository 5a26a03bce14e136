// Package cmd provides the CLI commands for rxmcp.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rxdocs/rxmcp/internal/config"
	"github.com/rxdocs/rxmcp/internal/index"
	"github.com/rxdocs/rxmcp/internal/logging"
	"github.com/rxdocs/rxmcp/internal/store"
	"github.com/rxdocs/rxmcp/internal/ui"
	"github.com/rxdocs/rxmcp/pkg/version"
)

var (
	debugMode      bool
	docsRootFlag   string
	dataDirFlag    string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the rxmcp CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rxmcp",
		Short: "Documentation search engine and MCP server",
		Long: `rxmcp indexes a documentation tree (markdown pages and component
references) and serves ranked full-text search to AI assistants over
the Model Context Protocol, or directly from the command line.

Run 'rxmcp index' to build the index, then 'rxmcp serve' to expose it.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("rxmcp version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.rxmcp/logs/")
	cmd.PersistentFlags().StringVar(&docsRootFlag, "docs", "", "Documentation root (overrides config)")
	cmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory for the persistent store (overrides config)")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newPageCmd())
	cmd.AddCommand(newPagesCmd())
	cmd.AddCommand(newComponentsCmd())
	cmd.AddCommand(newComponentCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI with signal-aware context cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func startLogging(_ *cobra.Command, _ []string) error {
	cleanup, err := logging.SetupDefault(debugMode)
	if err != nil {
		// Logging failure never blocks the actual command.
		fmt.Fprintf(os.Stderr, "Warning: logging setup failed: %v\n", err)
		return nil
	}
	loggingCleanup = cleanup
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// loadConfig builds the effective config for the working directory and
// applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if docsRootFlag != "" {
		cfg.Paths.DocsRoot = docsRootFlag
	}
	if dataDirFlag != "" {
		cfg.Paths.DataDir = dataDirFlag
	}
	return cfg, nil
}

// openStore opens the persistent-backed document store.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.DocStore, error) {
	persist, err := store.OpenSQLite(filepath.Join(cfg.Paths.DataDir, "docs.db"), logger)
	if err != nil {
		return nil, err
	}

	st, err := store.New(storeConfig(cfg),
		store.WithPersistence(persist),
		store.WithLogger(logger))
	if err != nil {
		_ = persist.Close()
		return nil, err
	}
	return st, nil
}

func storeConfig(cfg *config.Config) store.Config {
	return store.Config{
		TitleBoost:    cfg.Search.TitleBoost,
		PrefixBoost:   cfg.Search.PrefixBoost,
		SnippetLength: cfg.Search.SnippetLength,
		MaxResults:    cfg.Search.MaxResults,
		CacheSize:     cfg.Search.CacheSize,
		BaseURL:       cfg.Paths.DocsBaseURL,
	}
}

// openRestoredStore opens the store and loads the persisted generation,
// the common setup for read-only CLI commands.
func openRestoredStore(ctx context.Context, cfg *config.Config) (*store.DocStore, error) {
	st, err := openStore(cfg, nil)
	if err != nil {
		return nil, err
	}
	if _, err := st.Restore(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// newRunner wires the build pipeline from config.
func newRunner(cfg *config.Config, st *store.DocStore, renderer ui.Renderer) *index.Runner {
	provider := index.NewFSProvider(cfg.Paths.DocsRoot)
	if cfg.Index.MaxFileSize > 0 {
		provider.MaxFileSize = cfg.Index.MaxFileSize
	}

	return index.NewRunner(provider, st,
		index.WithWorkers(cfg.Index.Workers),
		index.WithStrictDuplicates(cfg.Index.Duplicates == config.DuplicateStrict),
		index.WithRenderer(renderer))
}
