package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	rxmcp "github.com/rxdocs/rxmcp/internal/mcp"
)

func newPageCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "page <slug>",
		Short: "Show one documentation page",
		Long: `Fetch a page by its exact slug and print it with the original
heading structure.

Examples:
  rxmcp page library/forms/button
  rxmcp page getting-started/installation --format json`,
		Args: cobra.ExactArgs(1),
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

			page, err := st.GetPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}

			fmt.Fprint(cmd.OutOrStdout(), rxmcp.FormatPage(page))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
