// Package artifact owns the files produced by one pipeline invocation.
//
// A [Store] is a directory of generated files. Each invocation opens a
// [Batch]; every file the batch creates gets a fresh name of the form
//
//	<kind>_<yyyymmdd>_<HHMMSS>_<6 hex>.<ext>
//
// where the timestamp is UTC and the suffix is random, so concurrent
// invocations never write to each other's files. Files are created
// exclusively: an existing name is never overwritten. When an invocation
// fails, [Batch.Discard] removes everything the batch created.
package artifact

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
)

// Artifact kinds.
const (
	KindDesign          = "design"
	KindTechnicalReport = "technical_report"
	KindFinancialReport = "financial_report"
)

// DefaultURLPrefix is the path generated files are served under.
const DefaultURLPrefix = "/backend_outputs/"

const (
	timeLayout   = "20060102_150405"
	suffixLength = 6
	maxAttempts  = 5
)

// Store is a directory of generated artifacts.
type Store struct {
	dir       string
	urlPrefix string
	now       func() time.Time
	suffix    func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithURLPrefix sets the prefix of public file URLs.
func WithURLPrefix(prefix string) StoreOption {
	return func(s *Store) {
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		s.urlPrefix = prefix
	}
}

// NewStore opens dir, creating it if needed.
func NewStore(dir string, opts ...StoreOption) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	s := &Store{
		dir:       dir,
		urlPrefix: DefaultURLPrefix,
		now:       time.Now,
		suffix:    randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// Path resolves a served file name to its location in the store. The name
// must look like a generated artifact name.
func (s *Store) Path(name string) (string, error) {
	if err := errors.ValidateArtifactName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// NewBatch starts a set of files owned by one invocation.
func (s *Store) NewBatch() *Batch {
	return &Batch{store: s}
}

// File is a created artifact. The caller writes to and closes F.
type File struct {
	F    *os.File
	Path string
	Name string
	URL  string
}

// Batch tracks the files created for one invocation. It is safe for
// concurrent use.
type Batch struct {
	store *Store

	mu    sync.Mutex
	files []*File
}

// Create makes a new, empty file of the given kind and extension.
func (b *Batch) Create(kind, ext string) (*File, error) {
	ext = strings.TrimPrefix(ext, ".")
	s := b.store

	var lastErr error
	for range maxAttempts {
		name := fmt.Sprintf("%s_%s_%s.%s", kind, s.now().UTC().Format(timeLayout), s.suffix(), ext)
		p := filepath.Join(s.dir, name)
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}

		file := &File{F: f, Path: p, Name: name, URL: path.Join(s.urlPrefix, name)}
		b.mu.Lock()
		b.files = append(b.files, file)
		b.mu.Unlock()
		return file, nil
	}
	return nil, fmt.Errorf("create %s file: %w", kind, lastErr)
}

// Files returns the files created so far.
func (b *Batch) Files() []*File {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*File(nil), b.files...)
}

// Discard closes and removes every file the batch created. Errors are
// ignored; a file that cannot be removed is left behind.
func (b *Batch) Discard() {
	b.mu.Lock()
	files := b.files
	b.files = nil
	b.mu.Unlock()

	for _, f := range files {
		f.F.Close()
		os.Remove(f.Path)
	}
}

func randomSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:suffixLength]
}
