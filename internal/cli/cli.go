// Package cli implements the fireai command-line interface.
//
// # Commands
//
//   - generate: run the pipeline for a prompt or a layout file
//   - chat: stream a free-form answer, optionally in an interactive view
//   - serve: start the HTTP server
//   - retrieve: print the context snippets a prompt would receive
//   - estimate: print the cost summary of a layout file
//   - cache: manage the model reply cache
//
// All commands support --verbose (-v) for debug-level logging and
// --config to point at a TOML settings file.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/artifact"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/buildinfo"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/cache"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/config"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/integrations"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/integrations/ollama"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/pipeline"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/retrieval"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/synth"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "fireai"

	// retryDelay is the base backoff between model request attempts.
	retryDelay = 500 * time.Millisecond
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFile    string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		configPath: config.DefaultFile,
		envFile:    config.DefaultEnvFile,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "FireAI designs sprinkler layouts and their documents",
		Long:         `FireAI turns a design request or a structured layout into a DXF drawing, a technical report and a cost estimate.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "settings file (TOML)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.chatCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.retrieveCommand())
	root.AddCommand(c.estimateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig loads and validates settings once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *CLI) newIndex(cfg *config.Config, replies cache.Cache) *retrieval.Index {
	return retrieval.NewIndex(cfg.Corpus.Dir,
		retrieval.WithLogger(c.Logger),
		retrieval.WithCache(replies))
}

func (c *CLI) newModel(cfg *config.Config) *ollama.Client {
	return ollama.NewClient(cfg.Model.URL, cfg.Model.Name,
		integrations.WithTimeout(cfg.Model.Timeout.Duration),
		integrations.WithRetry(cfg.Model.Retries+1, retryDelay),
		integrations.WithHeaders(map[string]string{"User-Agent": buildinfo.UserAgent()}))
}

func (c *CLI) newSynth(cfg *config.Config, replies cache.Cache) *synth.Synthesizer {
	return synth.New(c.newModel(cfg),
		synth.WithCache(replies, cache.NewDefaultKeyer(), cfg.Cache.TTL.Duration),
		synth.WithLogger(c.Logger))
}

// components bundles everything a pipeline run needs. Close releases the
// reply cache.
type components struct {
	cache  cache.Cache
	index  *retrieval.Index
	synth  *synth.Synthesizer
	store  *artifact.Store
	runner *pipeline.Runner
}

func (p *components) Close() error {
	return p.cache.Close()
}

// openCache opens the configured reply cache. A backend that cannot be
// opened is logged and replaced by a cache that stores nothing.
func (c *CLI) openCache(cfg *config.Config) cache.Cache {
	replies, err := cache.Open(cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("reply cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return replies
}

func (c *CLI) newComponents(cfg *config.Config) (*components, error) {
	replies := c.openCache(cfg)

	store, err := artifact.NewStore(cfg.Output.Dir)
	if err != nil {
		replies.Close()
		return nil, err
	}

	p := &components{
		cache: replies,
		index: c.newIndex(cfg, replies),
		synth: c.newSynth(cfg, replies),
		store: store,
	}
	p.runner = pipeline.NewRunner(store, p.synth,
		pipeline.WithRetriever(p.index),
		pipeline.WithPricing(cfg.Pricing),
		pipeline.WithTopK(cfg.Corpus.TopK),
		pipeline.WithFinancialFormat(cfg.Output.FinancialFormat),
		pipeline.WithLogger(c.Logger))
	return p, nil
}
