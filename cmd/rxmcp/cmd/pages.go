package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	rxmcp "github.com/rxdocs/rxmcp/internal/mcp"
)

func newPagesCmd() *cobra.Command {
	var prefix string
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List indexed pages",
		Long: `List indexed pages as slug and title pairs, slug ascending.

Examples:
  rxmcp pages
  rxmcp pages --prefix library/
  rxmcp pages --format json`,
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

			pages, err := st.ListPages(cmd.Context(), prefix, limit)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(pages)
			}

			fmt.Fprint(cmd.OutOrStdout(), rxmcp.FormatPageList(prefix, pages))
			return nil
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Only list slugs under this prefix")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of pages (0 = all)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
