package artifact

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
)

var namePattern = regexp.MustCompile(`^design_\d{8}_\d{6}_[0-9a-f]{6}\.dxf$`)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestCreateName(t *testing.T) {
	s := newStore(t)
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600)) }

	f, err := s.NewBatch().Create(KindDesign, ".dxf")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.F.Close()

	if !namePattern.MatchString(f.Name) {
		t.Errorf("Name = %q, does not match %s", f.Name, namePattern)
	}
	if want := "design_20260304_040607_"; f.Name[:len(want)] != want {
		t.Errorf("Name = %q, want UTC prefix %q", f.Name, want)
	}
	if f.URL != DefaultURLPrefix+f.Name {
		t.Errorf("URL = %q, want %q", f.URL, DefaultURLPrefix+f.Name)
	}
	if err := errors.ValidateArtifactName(f.Name); err != nil {
		t.Errorf("ValidateArtifactName(%q) = %v", f.Name, err)
	}
	if _, err := os.Stat(f.Path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestCreateRetriesCollision(t *testing.T) {
	s := newStore(t)
	suffixes := []string{"aaaaaa", "aaaaaa", "bbbbbb"}
	s.suffix = func() string {
		v := suffixes[0]
		suffixes = suffixes[1:]
		return v
	}
	s.now = func() time.Time { return time.Unix(0, 0) }

	b := s.NewBatch()
	first, err := b.Create(KindTechnicalReport, "pdf")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := b.Create(KindTechnicalReport, "pdf")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Name == second.Name {
		t.Errorf("collision not avoided: %s", first.Name)
	}
	if want := "technical_report_19700101_000000_bbbbbb.pdf"; second.Name != want {
		t.Errorf("second Name = %q, want %q", second.Name, want)
	}
}

func TestConcurrentBatchesNeverCollide(t *testing.T) {
	s := newStore(t)

	const n = 50
	names := make(chan string, n*2)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := s.NewBatch()
			for _, kind := range []string{KindDesign, KindFinancialReport} {
				f, err := b.Create(kind, "pdf")
				if err != nil {
					t.Errorf("Create: %v", err)
					return
				}
				f.F.Close()
				names <- f.Name
			}
		}()
	}
	wg.Wait()
	close(names)

	seen := map[string]bool{}
	for name := range names {
		if seen[name] {
			t.Errorf("duplicate name %s", name)
		}
		seen[name] = true
	}
	if len(seen) != n*2 {
		t.Errorf("created %d files, want %d", len(seen), n*2)
	}
}

func TestDiscard(t *testing.T) {
	s := newStore(t)
	keep, err := s.NewBatch().Create(KindDesign, "dxf")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	keep.F.Close()

	b := s.NewBatch()
	var paths []string
	for _, kind := range []string{KindDesign, KindTechnicalReport} {
		f, err := b.Create(kind, "pdf")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		paths = append(paths, f.Path)
	}
	b.Discard()

	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists after Discard", p)
		}
	}
	if _, err := os.Stat(keep.Path); err != nil {
		t.Errorf("Discard removed another batch's file: %v", err)
	}
	if len(b.Files()) != 0 {
		t.Errorf("Files() = %d after Discard, want 0", len(b.Files()))
	}
}

func TestPath(t *testing.T) {
	s := newStore(t)

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"design_20260101_000000_abcdef.dxf", false},
		{"../etc/passwd", true},
		{"design.dxf", true},
		{"", true},
	}
	for _, tt := range tests {
		got, err := s.Path(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Path(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != filepath.Join(s.Dir(), tt.name) {
			t.Errorf("Path(%q) = %q", tt.name, got)
		}
	}
}

func TestWithURLPrefix(t *testing.T) {
	s, err := NewStore(t.TempDir(), WithURLPrefix("/files"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	f, err := s.NewBatch().Create(KindDesign, "dxf")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.F.Close()
	if want := "/files/" + f.Name; f.URL != want {
		t.Errorf("URL = %q, want %q", f.URL, want)
	}
}
