package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/stream"
)

// chatCommand creates the chat command.
func (c *CLI) chatCommand() *cobra.Command {
	var tui bool

	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Ask the model a free-form question with company context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return fmt.Errorf("prompt is required")
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			replies := c.openCache(cfg)
			defer replies.Close()

			index := c.newIndex(cfg, replies)
			retrieved := index.Context(prompt, cfg.Corpus.TopK)
			s := c.newSynth(cfg, replies).Chat(cmd.Context(), prompt, retrieved)
			defer s.Close()

			if tui {
				return runChatView(prompt, s)
			}
			return copyStream(cmd.OutOrStdout(), s)
		},
	}

	cmd.Flags().BoolVar(&tui, "tui", false, "show the answer in an interactive view")

	return cmd
}

// copyStream writes fragments to w as they arrive.
func copyStream(w io.Writer, s *stream.Stream) error {
	for s.Next() {
		if _, err := io.WriteString(w, s.Text()); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return s.Err()
}

func runChatView(prompt string, s *stream.Stream) error {
	final, err := tea.NewProgram(NewChatModel(prompt, s)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(ChatModel); ok && m.Err != nil {
		return m.Err
	}
	return nil
}
