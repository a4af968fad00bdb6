// Package retrieval provides the context retriever: a substring search over
// a fixed directory of reference documents.
//
// Retrieval is deliberately minimal. It finds the first case-insensitive
// occurrence of the query in each document and returns a window of text
// around it. There is no ranking and no semantic similarity, so results are
// best-effort, low-precision context for the model, never an authoritative
// answer.
//
// An [Index] is built at most once, either explicitly with [Index.Build] at
// startup or lazily on the first [Index.Retrieve]. After that it is
// read-only and safe for concurrent readers. Changes to the corpus after
// the build are not observed.
package retrieval

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cache"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
)

// Window is the number of characters kept on each side of a match.
const Window = 200

// DefaultK is the default number of snippets per query.
const DefaultK = 3

// BuildStats describes the last index build.
type BuildStats struct {
	Dir       string        // corpus directory
	Documents int           // documents that contributed text
	Failed    int           // documents whose text could not be extracted
	Skipped   int           // files with no registered extractor
	Missing   bool          // corpus directory does not exist
	Duration  time.Duration // build time
}

type document struct {
	path  string
	text  []rune
	lower string // rune-for-rune lowercase of text
}

// Index is a process-wide, lazily built document index.
type Index struct {
	dir        string
	logger     *log.Logger
	extractors map[string]Extractor
	cache      cache.Cache

	once  sync.Once
	docs  []document
	stats BuildStats
}

// Option configures an [Index].
type Option func(*Index)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithExtractor registers fn for files with the given extension
// (including the dot, e.g. ".docx"). It replaces any built-in extractor.
func WithExtractor(ext string, fn Extractor) Option {
	return func(ix *Index) {
		ix.extractors[strings.ToLower(ext)] = fn
	}
}

// WithCache memoizes extracted document text across processes. Entries are
// keyed by path, size and modification time, so edited documents are
// re-extracted on the next build.
func WithCache(c cache.Cache) Option {
	return func(ix *Index) {
		if c != nil {
			ix.cache = c
		}
	}
}

// NewIndex creates an index over dir. Nothing is read until the first
// Build or Retrieve.
func NewIndex(dir string, opts ...Option) *Index {
	ix := &Index{
		dir:    dir,
		logger: log.Default(),
		extractors: map[string]Extractor{
			".pdf": ExtractPDF,
			".txt": ExtractText,
			".md":  ExtractText,
		},
		cache: cache.NewNullCache(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Dir returns the corpus directory.
func (ix *Index) Dir() string {
	return ix.dir
}

// Build scans the corpus directory once. Later calls return immediately.
// A document whose text cannot be extracted is logged and skipped; a
// missing directory yields an empty index.
func (ix *Index) Build(ctx context.Context) {
	ix.once.Do(func() { ix.build(ctx) })
}

// Stats returns the build statistics, building the index if needed.
func (ix *Index) Stats() BuildStats {
	ix.Build(context.Background())
	return ix.stats
}

// Degraded returns a RETRIEVAL_DEGRADED error describing why retrieval may
// return incomplete context, or nil when the corpus was read cleanly.
func (ix *Index) Degraded() error {
	st := ix.Stats()
	switch {
	case st.Missing:
		return errors.New(errors.ErrCodeRetrievalDegraded, "corpus directory %s does not exist", st.Dir)
	case st.Failed > 0:
		return errors.New(errors.ErrCodeRetrievalDegraded, "%d of %d documents could not be read",
			st.Failed, st.Failed+st.Documents)
	case st.Documents == 0:
		return errors.New(errors.ErrCodeRetrievalDegraded, "corpus directory %s has no documents", st.Dir)
	}
	return nil
}

// Retrieve returns at most k snippets around the first case-insensitive
// occurrence of query in each document, in document path order. Newlines
// in snippets are collapsed to spaces. An empty query or k < 1 returns nil.
func (ix *Index) Retrieve(query string, k int) []string {
	if strings.TrimSpace(query) == "" || k < 1 {
		return nil
	}
	ix.Build(context.Background())

	needle := lowerRunes(query)
	needleLen := utf8.RuneCountInString(query)

	var snippets []string
	for _, doc := range ix.docs {
		at := strings.Index(doc.lower, needle)
		if at < 0 {
			continue
		}
		start := utf8.RuneCountInString(doc.lower[:at])
		snippets = append(snippets, snippet(doc.text, start, start+needleLen))
		if len(snippets) == k {
			break
		}
	}
	return snippets
}

// Context joins the snippets for query into one block of text, separated
// by blank lines, ready to be placed in a prompt.
func (ix *Index) Context(query string, k int) string {
	return strings.Join(ix.Retrieve(query, k), "\n\n")
}

func (ix *Index) build(ctx context.Context) {
	start := time.Now()
	ix.stats.Dir = ix.dir

	var paths []string
	err := filepath.WalkDir(ix.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == ix.dir {
				return err
			}
			ix.stats.Failed++
			ix.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			ix.stats.Missing = true
			ix.logger.Warn("corpus directory not found", "dir", ix.dir)
		} else {
			ix.logger.Warn("corpus scan incomplete", "dir", ix.dir, "err", err)
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		extract, ok := ix.extractors[strings.ToLower(filepath.Ext(path))]
		if !ok {
			ix.stats.Skipped++
			continue
		}
		text, err := ix.extract(ctx, path, extract)
		if err != nil {
			ix.stats.Failed++
			ix.logger.Warn("skipping unreadable document", "path", path, "err", err)
			continue
		}
		ix.docs = append(ix.docs, newDocument(path, text))
		ix.stats.Documents++
	}

	ix.stats.Duration = time.Since(start)
	ix.logger.Debug("built retrieval index",
		"dir", ix.dir,
		"documents", ix.stats.Documents,
		"failed", ix.stats.Failed,
		"duration", ix.stats.Duration)
}

func (ix *Index) extract(ctx context.Context, path string, extract Extractor) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := "extract:" + cache.Hash([]byte(fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())))
	if data, hit, err := ix.cache.Get(ctx, key); err == nil && hit {
		return string(data), nil
	}

	text, err := safeExtract(extract, path)
	if err != nil {
		return "", err
	}
	if err := ix.cache.Set(ctx, key, []byte(text), 0); err != nil {
		ix.logger.Debug("extract cache write failed", "path", path, "err", err)
	}
	return text, nil
}

func newDocument(path, text string) document {
	return document{
		path:  path,
		text:  []rune(text),
		lower: lowerRunes(text),
	}
}

// lowerRunes lowercases s one rune at a time, so rune offsets in the
// result match rune offsets in s.
func lowerRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func snippet(text []rune, start, end int) string {
	from := max(start-Window, 0)
	to := min(end+Window, len(text))
	return collapseNewlines(string(text[from:to]))
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func collapseNewlines(s string) string {
	return newlineReplacer.Replace(s)
}
