package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	rxmcp "github.com/rxdocs/rxmcp/internal/mcp"
)

func newSearchCmd() *cobra.Command {
	var limit int
	var offset int
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the documentation index",
		Long: `Run a ranked full-text search over indexed pages.

Examples:
  rxmcp search "state management"
  rxmcp search button --limit 5
  rxmcp search "event handlers" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openRestoredStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			results, err := st.Search(cmd.Context(), query, limit, offset)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			fmt.Fprint(cmd.OutOrStdout(), rxmcp.FormatSearchResults(query, results))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}
