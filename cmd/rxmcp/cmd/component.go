package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	rxmcp "github.com/rxdocs/rxmcp/internal/mcp"
)

func newComponentCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "component <name>",
		Short: "Show one component record",
		Long: `Fetch a component by name. Matching is case-insensitive and the
rx. prefix is optional.

Examples:
  rxmcp component rx.box
  rxmcp component button --format json`,
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

			c, err := st.GetComponent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			}

			fmt.Fprint(cmd.OutOrStdout(), rxmcp.FormatComponent(c))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
