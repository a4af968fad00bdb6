// Package config loads FireAI settings.
//
// Settings are layered, each layer overriding the previous one:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file (fireai.toml by default)
//  3. A .env file in the working directory
//  4. Process environment variables
//
// Command-line flags are applied on top by the CLI.
//
// # File Format
//
//	[model]
//	url = "http://localhost:11434/api/generate"
//	name = "llama3"
//	timeout = "120s"
//
//	[corpus]
//	dir = "company_docs"
//	top_k = 3
//
//	[output]
//	dir = "backend_outputs"
//	financial_format = "pdf"
//
//	[pricing]
//	sprinkler_unit_cost = 120.0
//	area_unit_cost = 10.0
//	currency = "USD"
//
//	[cache]
//	backend = "none"   # none, file or redis
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[server]
//	addr = ":8000"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cache"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/cost"
	ferrors "github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/integrations"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/integrations/ollama"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/pipeline"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/retrieval"
)

// Default file locations.
const (
	DefaultFile    = "fireai.toml"
	DefaultEnvFile = ".env"
)

// Defaults.
const (
	DefaultCorpusDir     = "company_docs"
	DefaultOutputDir     = "backend_outputs"
	DefaultAddr          = ":8000"
	DefaultCacheTTL      = 24 * time.Hour
	DefaultMaxUploadSize = 10 << 20
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvModelURL          = "OLLAMA_URL"
	EnvModelName         = "OLLAMA_MODEL"
	EnvCorpusDir         = "FIREAI_CORPUS_DIR"
	EnvOutputDir         = "FIREAI_OUTPUT_DIR"
	EnvRedisURL          = "FIREAI_REDIS_URL"
	EnvAddr              = "FIREAI_ADDR"
	EnvSprinklerUnitCost = "FIREAI_SPRINKLER_UNIT_COST"
	EnvAreaUnitCost      = "FIREAI_AREA_UNIT_COST"
	EnvCurrency          = "FIREAI_CURRENCY"
)

// Config holds all FireAI settings.
type Config struct {
	Model   ModelConfig  `toml:"model"`
	Corpus  CorpusConfig `toml:"corpus"`
	Output  OutputConfig `toml:"output"`
	Pricing cost.Pricing `toml:"pricing"`
	Cache   CacheConfig  `toml:"cache"`
	Server  ServerConfig `toml:"server"`
}

// ModelConfig configures the language model endpoint.
type ModelConfig struct {
	URL     string   `toml:"url"`
	Name    string   `toml:"name"`
	Timeout Duration `toml:"timeout"`
	Retries int      `toml:"retries"`
}

// CorpusConfig configures context retrieval.
type CorpusConfig struct {
	Dir  string `toml:"dir"`
	TopK int    `toml:"top_k"`
}

// OutputConfig configures generated artifacts.
type OutputConfig struct {
	Dir             string `toml:"dir"`
	FinancialFormat string `toml:"financial_format"`
}

// CacheConfig configures the model reply cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	MaxUploadSize int64  `toml:"max_upload_size"`
}

// Duration is a time.Duration written as a string ("90s", "2m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			URL:     ollama.DefaultURL,
			Name:    ollama.DefaultModel,
			Timeout: Duration{integrations.DefaultTimeout},
			Retries: 1,
		},
		Corpus: CorpusConfig{
			Dir:  DefaultCorpusDir,
			TopK: retrieval.DefaultK,
		},
		Output: OutputConfig{
			Dir:             DefaultOutputDir,
			FinancialFormat: pipeline.DefaultFinancialFormat,
		},
		Pricing: cost.DefaultPricing(),
		Cache: CacheConfig{
			Backend: cache.BackendNone,
			Dir:     DefaultCacheDir(),
			TTL:     Duration{DefaultCacheTTL},
		},
		Server: ServerConfig{
			Addr:          DefaultAddr,
			MaxUploadSize: DefaultMaxUploadSize,
		},
	}
}

// DefaultCacheDir returns the file cache directory under the user cache
// directory, falling back to a temp directory.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "fireai")
	}
	return filepath.Join(os.TempDir(), "fireai-cache")
}

// Load reads the TOML file at path and the env file at envFile on top of
// the defaults, then applies the process environment. Missing files are
// skipped; an empty path skips that layer.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		if m != nil {
			dotenv = m
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
// Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvModelURL:  &c.Model.URL,
		EnvModelName: &c.Model.Name,
		EnvCorpusDir: &c.Corpus.Dir,
		EnvOutputDir: &c.Output.Dir,
		EnvRedisURL:  &c.Cache.RedisURL,
		EnvAddr:      &c.Server.Addr,
		EnvCurrency:  &c.Pricing.Currency,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		EnvSprinklerUnitCost: &c.Pricing.SprinklerUnitCost,
		EnvAreaUnitCost:      &c.Pricing.AreaUnitCost,
	}
	for key, dst := range floats {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}

	// A redis URL without an explicit backend selects the redis cache.
	if v, ok := lookup(EnvRedisURL); ok && v != "" && c.Cache.Backend == cache.BackendNone {
		c.Cache.Backend = cache.BackendRedis
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := ferrors.ValidateEndpoint(c.Model.URL); err != nil {
		return fmt.Errorf("model.url: %w", err)
	}
	switch {
	case c.Model.Name == "":
		return fmt.Errorf("model.name is empty")
	case c.Model.Timeout.Duration <= 0:
		return fmt.Errorf("model.timeout must be positive, got %s", c.Model.Timeout)
	case c.Model.Retries < 0:
		return fmt.Errorf("model.retries must not be negative")
	case c.Corpus.TopK < 1:
		return fmt.Errorf("corpus.top_k must be at least 1, got %d", c.Corpus.TopK)
	case c.Output.Dir == "":
		return fmt.Errorf("output.dir is empty")
	case c.Pricing.SprinklerUnitCost < 0 || c.Pricing.AreaUnitCost < 0:
		return fmt.Errorf("pricing unit costs must not be negative")
	case c.Cache.TTL.Duration < 0:
		return fmt.Errorf("cache.ttl must not be negative")
	case c.Server.MaxUploadSize <= 0:
		return fmt.Errorf("server.max_upload_size must be positive")
	}
	if err := pipeline.ValidateFinancialFormat(c.Output.FinancialFormat); err != nil {
		return fmt.Errorf("output.financial_format: %w", err)
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	return nil
}

// CacheOptions returns the options for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
	}
}
