package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
)

// estimateCommand creates the estimate command.
func (c *CLI) estimateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate <layout.json>",
		Short: "Print the area and cost summary of a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			l, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary := cfg.Pricing.Estimate(l)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			if len(l.Rooms) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), roomsTable(l))
			}
			fmt.Fprintln(cmd.OutOrStdout(), costTable(summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}
