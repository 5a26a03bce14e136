package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	rxmcp "github.com/rxdocs/rxmcp/internal/mcp"
)

func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long: `Report page and component counts, the served generation ID, the
corpus content hash, and the last build time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openRestoredStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			stats := st.Stats(cmd.Context())

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintln(cmd.OutOrStdout(), rxmcp.FormatStats(stats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
