package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rxdocs/rxmcp/internal/docs"
	rxmcp "github.com/rxdocs/rxmcp/internal/mcp"
)

func newComponentsCmd() *cobra.Command {
	var category string
	var query string
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List or search indexed components",
		Long: `List component records, optionally filtered by category, or search
them by name, category, and property text.

Examples:
  rxmcp components
  rxmcp components --category layout
  rxmcp components --search "click handler"`,
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

			ctx := cmd.Context()
			var components []*docs.Component
			if query != "" {
				components, err = st.SearchComponents(ctx, query, limit)
			} else {
				components, err = st.ListComponents(ctx, category)
			}
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(components)
			}

			fmt.Fprint(cmd.OutOrStdout(), rxmcp.FormatComponentList(category, components))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list components in this category")
	cmd.Flags().StringVarP(&query, "search", "s", "", "Search components instead of listing")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of search results")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
