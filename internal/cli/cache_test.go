package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cache"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/config"
)

func TestPrintCacheLocation(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    string
	}{
		{"file", cache.BackendFile, "/tmp/fireai-cache\n"},
		{"redis", cache.BackendRedis, "redis://localhost:6379/0\n"},
		{"none", cache.BackendNone, "none\n"},
		{"empty", "", "none\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Dir = "/tmp/fireai-cache"
			cfg.Cache.RedisURL = "redis://localhost:6379/0"

			var buf bytes.Buffer
			if err := printCacheLocation(&buf, cfg); err != nil {
				t.Fatalf("printCacheLocation error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("printCacheLocation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClearFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "reply:abc", []byte("hello"), time.Hour); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Cache.Backend = cache.BackendFile
	cfg.Cache.Dir = dir
	if err := clearCache(ctx, cfg); err != nil {
		t.Fatalf("clearCache error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear, want 0", len(entries))
	}
}

func TestClearRedisCache(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	srv.Set("fireai:reply:1", "a")
	srv.Set("reply:2", "b")

	cfg := config.Default()
	cfg.Cache.Backend = cache.BackendRedis
	cfg.Cache.RedisURL = "redis://" + srv.Addr() + "/0"
	if err := clearCache(ctx, cfg); err != nil {
		t.Fatalf("clearCache error: %v", err)
	}
	if keys := srv.Keys(); len(keys) != 0 {
		t.Errorf("keys after clear = %v, want none", keys)
	}
}

func TestClearMissingFileCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = cache.BackendFile
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "nested", "cache")
	if err := clearCache(context.Background(), cfg); err != nil {
		t.Errorf("clearCache on a fresh directory: %v", err)
	}
}
