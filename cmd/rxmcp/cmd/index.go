package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rxdocs/rxmcp/internal/config"
	"github.com/rxdocs/rxmcp/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var plain bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the documentation index",
		Long: `Scan the documentation root, parse every markdown page, and publish
a new index generation. The previous generation keeps serving reads
until the new one is complete.

Examples:
  rxmcp index
  rxmcp index --docs ./website/docs
  rxmcp index --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if strict {
				cfg.Index.Duplicates = config.DuplicateStrict
			}

			st, err := openStore(cfg, nil)
			if err != nil {
				return err
			}
			defer st.Close()

			renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
				ui.WithForcePlain(plain),
				ui.WithDocsRoot(cfg.Paths.DocsRoot)))
			if err := renderer.Start(cmd.Context()); err != nil {
				return err
			}
			defer renderer.Stop()

			runner := newRunner(cfg, st, renderer)
			summary, err := runner.Build(cmd.Context())
			if err != nil {
				return err
			}

			if summary.SlugCollisions+summary.NameCollisions > 0 {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Resolved %d slug and %d component name collisions (last write wins)\n",
					summary.SlugCollisions, summary.NameCollisions)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Plain text progress output (no TUI)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on duplicate slugs or component names")

	return cmd
}
