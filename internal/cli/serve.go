package cli

import (
	"github.com/spf13/cobra"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serve exposes the pipeline over HTTP:

  GET  /                         health check
  POST /generate-dwg             run the pipeline (form or multipart)
  POST /chat                     stream a free-form answer
  GET  /backend_outputs/{name}   download a generated artifact`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			comp, err := c.newComponents(cfg)
			if err != nil {
				return err
			}
			defer comp.Close()

			prog := newProgress(c.Logger)
			comp.index.Build(cmd.Context())
			stats := comp.index.Stats()
			prog.done(pluralize(stats.Documents, "document", "documents") + " indexed")
			if err := comp.index.Degraded(); err != nil {
				c.Logger.Warn("retrieval degraded", "err", err)
			}

			srv := server.New(comp.runner, comp.synth, comp.store,
				server.WithRetriever(comp.index),
				server.WithTopK(cfg.Corpus.TopK),
				server.WithMaxUploadSize(cfg.Server.MaxUploadSize),
				server.WithLogger(c.Logger))

			c.Logger.Info("listening", "addr", cfg.Server.Addr, "outputs", comp.store.Dir(), "model", cfg.Model.Name)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
