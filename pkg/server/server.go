// Package server exposes the pipeline over HTTP.
//
// # Routes
//
//   - GET  /                  health check
//   - POST /generate-dwg      run the pipeline; form fields prompt and
//     layout_json, file field upload; returns the result envelope as JSON
//   - POST /chat              stream a free-form answer as text/plain
//   - GET  /backend_outputs/* download a generated artifact
//
// A failed /generate-dwg responds 400 for caller mistakes, 502 when the
// model is unreachable and 500 otherwise, always with the
// {status, stage, message} envelope. A /chat stream that fails after it
// started ends with the [ErrSentinel] marker followed by the message.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/artifact"
	ferrors "github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/pipeline"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/stream"
)

// ErrSentinel prefixes the error message that ends a failed chat stream.
const ErrSentinel = "[ERR]"

// HealthMessage is the body of GET /.
const HealthMessage = "FireAI backend running"

// DefaultMaxUploadSize bounds a /generate-dwg request body.
const DefaultMaxUploadSize = 10 << 20

const shutdownTimeout = 10 * time.Second

// Runner executes pipeline invocations.
type Runner interface {
	Execute(ctx context.Context, req pipeline.Request) pipeline.Result
}

// Chatter streams free-form answers.
type Chatter interface {
	Chat(ctx context.Context, prompt, retrieved string) *stream.Stream
}

// Server is the FireAI HTTP surface.
type Server struct {
	runner    Runner
	chat      Chatter
	retriever pipeline.Retriever
	store     *artifact.Store
	logger    *log.Logger
	topK      int
	maxUpload int64
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithRetriever sets the context source for /chat.
func WithRetriever(r pipeline.Retriever) Option {
	return func(s *Server) { s.retriever = r }
}

// WithTopK sets the number of context snippets for /chat.
func WithTopK(k int) Option {
	return func(s *Server) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxUploadSize bounds request bodies of /generate-dwg.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New creates a server. store serves generated files.
func New(runner Runner, chat Chatter, store *artifact.Store, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		chat:      chat,
		store:     store,
		logger:    log.Default(),
		topK:      pipeline.DefaultTopK,
		maxUpload: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHealth)
	r.Post("/generate-dwg", s.handleGenerate)
	r.Post("/chat", s.handleChat)
	r.Get(strings.TrimSuffix(artifact.DefaultURLPrefix, "/")+"/{name}", s.handleArtifact)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": HealthMessage})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(w, r)
	if err != nil {
		writeResult(w, pipeline.Result{
			Status:  pipeline.StatusError,
			Stage:   string(ferrors.StageInput),
			Message: ferrors.UserMessage(err),
			Err:     err,
		})
		return
	}
	writeResult(w, s.runner.Execute(r.Context(), req))
}

// readRequest extracts the pipeline request from a multipart or
// url-encoded form.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(s.maxUpload)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return pipeline.Request{}, ferrors.Wrap(ferrors.ErrCodeBadRequest, err, "invalid form")
	}

	req := pipeline.Request{
		Prompt:     r.FormValue("prompt"),
		LayoutJSON: r.FormValue("layout_json"),
	}

	if !isMultipart(r) {
		return req, nil
	}
	f, _, err := r.FormFile("upload")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return pipeline.Request{}, ferrors.Wrap(ferrors.ErrCodeBadRequest, err, "invalid upload")
	default:
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return pipeline.Request{}, ferrors.Wrap(ferrors.ErrCodeBadRequest, err, "read upload")
		}
		req.Upload = data
	}
	return req, nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		writeResult(w, pipeline.Result{
			Status:  pipeline.StatusError,
			Stage:   string(ferrors.StageInput),
			Message: "prompt is required",
			Err:     ferrors.New(ferrors.ErrCodeBadRequest, "prompt is required"),
		})
		return
	}

	var retrieved string
	if s.retriever != nil {
		retrieved = strings.Join(s.retriever.Retrieve(prompt, s.topK), "\n\n")
	}

	st := s.chat.Chat(r.Context(), prompt, retrieved)
	defer st.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	var written int
	for st.Next() {
		n, err := io.WriteString(w, st.Text())
		written += n
		if err != nil {
			s.logger.Debug("chat client went away", "err", err)
			return
		}
		_ = rc.Flush()
	}
	if err := st.Err(); err != nil {
		s.logger.Warn("chat stream failed", "err", err, "bytes", written)
		io.WriteString(w, ErrSentinel+ferrors.UserMessage(err))
		_ = rc.Flush()
	}
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Path(chi.URLParam(r, "name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if strings.HasSuffix(p, ".dxf") {
		w.Header().Set("Content-Type", "application/dxf")
	}
	http.ServeFile(w, r, p)
}

// =============================================================================
// Responses
// =============================================================================

// StatusCode maps a result to its HTTP status.
func StatusCode(res pipeline.Result) int {
	if res.OK() {
		return http.StatusOK
	}
	switch ferrors.GetCode(res.Err) {
	case ferrors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case ferrors.ErrCodeModelUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeResult(w http.ResponseWriter, res pipeline.Result) {
	writeJSON(w, StatusCode(res), res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
