package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cache"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model reply cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached model replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return clearCache(cmd.Context(), cfg)
		},
	}
}

func clearCache(ctx context.Context, cfg *config.Config) error {
	switch cfg.Cache.Backend {
	case cache.BackendFile:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return err
		}
		if err := fc.Clear(); err != nil {
			return fmt.Errorf("clear %s: %w", fc.Dir(), err)
		}
		printSuccess("Cleared reply cache")
		printDetail("Directory: %s", fc.Dir())
	case cache.BackendRedis:
		rc, err := cache.NewRedisCacheFromURL(cfg.Cache.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Close()
		n, err := rc.Clear(ctx, "")
		if err != nil {
			return fmt.Errorf("clear redis cache: %w", err)
		}
		printSuccess("Cleared %d cached replies", n)
	default:
		printInfo("Reply cache is disabled")
	}
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached replies are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return printCacheLocation(cmd.OutOrStdout(), cfg)
		},
	}
}

func printCacheLocation(w io.Writer, cfg *config.Config) error {
	var err error
	switch cfg.Cache.Backend {
	case cache.BackendFile:
		_, err = fmt.Fprintln(w, cfg.Cache.Dir)
	case cache.BackendRedis:
		_, err = fmt.Fprintln(w, cfg.Cache.RedisURL)
	default:
		_, err = fmt.Fprintln(w, cache.BackendNone)
	}
	return err
}
