package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// retrieveCommand creates the retrieve command.
func (c *CLI) retrieveCommand() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Show the company document snippets a prompt would receive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if k <= 0 {
				k = cfg.Corpus.TopK
			}

			replies := c.openCache(cfg)
			defer replies.Close()

			index := c.newIndex(cfg, replies)
			prog := newProgress(c.Logger)
			index.Build(cmd.Context())
			prog.done(pluralize(index.Stats().Documents, "document", "documents") + " indexed")
			if err := index.Degraded(); err != nil {
				printWarning("%v", err)
			}

			snippets := index.Retrieve(strings.Join(args, " "), k)
			if len(snippets) == 0 {
				printInfo("No matching snippets")
				return nil
			}
			for i, s := range snippets {
				fmt.Println(StyleTitle.Render(fmt.Sprintf("[%d]", i+1)) + " " + s)
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "top", "k", 0, "maximum number of snippets (default from config)")

	return cmd
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
