package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rxdocs/rxmcp/internal/logging"
	rxmcp "github.com/rxdocs/rxmcp/internal/mcp"
	"github.com/rxdocs/rxmcp/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var watch bool
	var noAutoIndex bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the documentation index over MCP (stdio)",
		Long: `Start the MCP server on stdio. The persisted index is restored if
present; with auto-indexing enabled (the default) an empty store is
built from the documentation root at startup.

stdout carries JSON-RPC only; logs go to file and stderr.

Examples:
  rxmcp serve
  rxmcp serve --watch
  rxmcp serve --docs ./website/docs --no-auto-index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), watch, noAutoIndex)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-index when documentation sources change")
	cmd.Flags().BoolVar(&noAutoIndex, "no-auto-index", false, "Do not build the index at startup when empty")

	return cmd
}

func runServe(ctx context.Context, watch, noAutoIndex bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdio transport owns stdout; route logs to file + stderr.
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = true
	logCfg.Level = cfg.Server.LogLevel
	if debugMode {
		logCfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		logger = slog.Default()
	} else {
		defer cleanup()
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	restored, err := st.Restore(ctx)
	if err != nil {
		logger.Warn("restore_failed", slog.String("error", err.Error()))
	}
	if restored {
		logger.Info("index_restored_from_store")
	}

	runner := newRunner(cfg, st, nil)

	if !st.Ready() && cfg.Server.AutoIndex && !noAutoIndex {
		logger.Info("auto_index_starting", slog.String("docs_root", cfg.Paths.DocsRoot))
		if _, err := runner.Build(ctx); err != nil {
			// Serve anyway; searches report the empty index until the
			// corpus becomes available and a rebuild succeeds.
			logger.Error("auto_index_failed", slog.String("error", err.Error()))
		}
	}

	if watch || cfg.Watcher.Enabled {
		w := watcher.New(cfg.Paths.DocsRoot,
			func(ctx context.Context) error {
				_, err := runner.Build(ctx)
				return err
			},
			watcher.WithDebounce(cfg.Watcher.Debounce),
			watcher.WithLogger(logger))
		if err := w.Start(ctx); err != nil {
			logger.Warn("watcher_start_failed", slog.String("error", err.Error()))
		} else {
			defer w.Stop()
		}
	}

	server, err := rxmcp.NewServer(st, logger)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}
