package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/artifact"
	ferrors "github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/pipeline"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/stream"
)

type fakeRunner struct {
	got pipeline.Request
	res pipeline.Result
}

func (f *fakeRunner) Execute(_ context.Context, req pipeline.Request) pipeline.Result {
	f.got = req
	return f.res
}

type fakeChat struct {
	fragments []string
	err       error
	retrieved string
}

func (f *fakeChat) Chat(ctx context.Context, _, retrieved string) *stream.Stream {
	f.retrieved = retrieved
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
		for _, frag := range f.fragments {
			if !emit(frag) {
				return nil
			}
		}
		return f.err
	})
}

type fakeRetriever struct{}

func (fakeRetriever) Retrieve(string, int) []string { return []string{"one", "two"} }
func (fakeRetriever) Degraded() error               { return nil }

func newServer(t *testing.T, runner Runner, chat Chatter) (*Server, *artifact.Store) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return New(runner, chat, store,
		WithLogger(log.New(io.Discard)),
		WithRetriever(fakeRetriever{})), store
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t, &fakeRunner{}, &fakeChat{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != HealthMessage {
		t.Errorf("message = %q, want %q", body["message"], HealthMessage)
	}
}

func TestGenerateMultipart(t *testing.T) {
	runner := &fakeRunner{res: pipeline.Result{
		Status: pipeline.StatusSuccess,
		Files:  &pipeline.Files{Geometry: "/backend_outputs/design_x.dxf"},
	}}
	s, _ := newServer(t, runner, &fakeChat{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("prompt", "two rooms")
	fw, _ := mw.CreateFormFile("upload", "layout.json")
	fw.Write([]byte(`{"rooms":[]}`))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/generate-dwg", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if runner.got.Prompt != "two rooms" || string(runner.got.Upload) != `{"rooms":[]}` {
		t.Errorf("request = %+v", runner.got)
	}
	if !strings.Contains(rec.Body.String(), `"geometry":"/backend_outputs/design_x.dxf"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestGenerateURLEncoded(t *testing.T) {
	runner := &fakeRunner{res: pipeline.Result{Status: pipeline.StatusSuccess}}
	s, _ := newServer(t, runner, &fakeChat{})

	form := url.Values{"layout_json": {`{"rooms":[]}`}}
	req := httptest.NewRequest(http.MethodPost, "/generate-dwg", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if runner.got.LayoutJSON != `{"rooms":[]}` {
		t.Errorf("LayoutJSON = %q", runner.got.LayoutJSON)
	}
}

func TestGenerateStatusMapping(t *testing.T) {
	tests := []struct {
		code ferrors.Code
		want int
	}{
		{ferrors.ErrCodeBadRequest, http.StatusBadRequest},
		{ferrors.ErrCodeModelUnavailable, http.StatusBadGateway},
		{ferrors.ErrCodeInvalidLayout, http.StatusInternalServerError},
		{ferrors.ErrCodeRenderFailure, http.StatusInternalServerError},
		{ferrors.ErrCodeReportFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := ferrors.New(tt.code, "boom")
			runner := &fakeRunner{res: pipeline.Result{
				Status:  pipeline.StatusError,
				Stage:   string(err.Stage),
				Message: "boom",
				Err:     err,
			}}
			s, _ := newServer(t, runner, &fakeChat{})

			req := httptest.NewRequest(http.MethodPost, "/generate-dwg", strings.NewReader("prompt=x"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["status"] != "error" || body["stage"] != string(err.Stage) || body["message"] != "boom" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestGenerateBodyTooLarge(t *testing.T) {
	runner := &fakeRunner{}
	store, _ := artifact.NewStore(t.TempDir())
	s := New(runner, &fakeChat{}, store, WithLogger(log.New(io.Discard)), WithMaxUploadSize(16))

	form := url.Values{"layout_json": {strings.Repeat("x", 100)}}
	req := httptest.NewRequest(http.MethodPost, "/generate-dwg", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatStreams(t *testing.T) {
	chat := &fakeChat{fragments: []string{"Sprinklers ", "every ", "3m."}}
	s, _ := newServer(t, &fakeRunner{}, chat)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("prompt=spacing"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "Sprinklers every 3m." {
		t.Errorf("body = %q", got)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if chat.retrieved != "one\n\ntwo" {
		t.Errorf("retrieved = %q", chat.retrieved)
	}
}

func TestChatErrorSentinel(t *testing.T) {
	chat := &fakeChat{
		fragments: []string{"partial"},
		err:       ferrors.Wrap(ferrors.ErrCodeModelUnavailable, fmt.Errorf("connection reset"), "model stream failed"),
	}
	s, _ := newServer(t, &fakeRunner{}, chat)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("prompt=q"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	want := "partial" + ErrSentinel + "model stream failed: connection reset"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestChatRequiresPrompt(t *testing.T) {
	s, _ := newServer(t, &fakeRunner{}, &fakeChat{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("prompt=+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestArtifactDownload(t *testing.T) {
	s, store := newServer(t, &fakeRunner{}, &fakeChat{})

	name := "design_20260101_120000_abcdef.dxf"
	if err := os.WriteFile(filepath.Join(store.Dir(), name), []byte("  0\nEOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/backend_outputs/" + name, http.StatusOK},
		{"/backend_outputs/design_20260101_120000_000000.dxf", http.StatusNotFound},
		{"/backend_outputs/notes.txt", http.StatusNotFound},
		{"/backend_outputs/..%2Fsecret", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/backend_outputs/"+name, nil))
	if ct := rec.Header().Get("Content-Type"); ct != "application/dxf" {
		t.Errorf("Content-Type = %q, want application/dxf", ct)
	}
	if rec.Body.String() != "  0\nEOF\n" {
		t.Errorf("body = %q", rec.Body)
	}
}
