// Package synth obtains layouts and chat answers from a generative model.
//
// The [Synthesizer] assembles prompts from the user's request and the
// retrieved context, calls the model, and maps transport failures to
// MODEL_UNAVAILABLE. It never interprets the reply: layout replies are
// returned verbatim for the normalizer, and chat replies are handed out as
// a fragment stream.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cache"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/observability"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/stream"
)

// LayoutInstruction constrains the model to reply with a layout object.
const LayoutInstruction = "Return ONLY JSON with keys: rooms (list), sprinklers (list). " +
	"Rooms must have name,x,y,width,height (in mm)."

// ChatInstruction keeps free-form answers short.
const ChatInstruction = "Please answer concisely."

// Model is a generative model endpoint.
type Model interface {
	// Model returns the model name, used in cache keys.
	Model() string

	// Generate returns the complete reply to prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Stream returns the reply to prompt as fragments.
	Stream(ctx context.Context, prompt string) (*stream.Stream, error)
}

// Synthesizer turns requests plus context into model calls.
//
// All methods are safe for concurrent use by multiple goroutines.
type Synthesizer struct {
	model  Model
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// Option configures a [Synthesizer].
type Option func(*Synthesizer)

// WithCache memoizes layout replies that contain well-formed JSON.
// Chat replies are never cached.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(s *Synthesizer) {
		if c != nil {
			s.cache = c
		}
		if keyer != nil {
			s.keyer = keyer
		}
		s.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Synthesizer backed by model.
func New(model Model, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		model:  model,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LayoutPrompt builds the prompt for a layout request.
func LayoutPrompt(prompt, retrieved string) string {
	return fmt.Sprintf("Context:\n%s\n\nUser Request:\n%s\n\n%s", retrieved, prompt, LayoutInstruction)
}

// ChatPrompt builds the prompt for a free-form question.
func ChatPrompt(prompt, retrieved string) string {
	return fmt.Sprintf("Context:\n%s\n\nUser Prompt:\n%s\n\n%s", retrieved, prompt, ChatInstruction)
}

// Synthesize asks the model for a layout and returns its reply unmodified.
// Failures reaching the model are MODEL_UNAVAILABLE errors.
func (s *Synthesizer) Synthesize(ctx context.Context, prompt, retrieved string) (string, error) {
	full := LayoutPrompt(prompt, retrieved)
	key := s.keyer.ReplyKey(s.model.Model(), full)

	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "reply")
		s.logger.Debug("layout reply cache hit", "model", s.model.Model())
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "reply")

	start := time.Now()
	reply, err := s.model.Generate(ctx, full)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeModelUnavailable, err, "model %s unavailable", s.model.Model())
	}
	s.logger.Debug("model replied",
		"model", s.model.Model(),
		"bytes", len(reply),
		"duration", time.Since(start))

	if json.Valid([]byte(layout.StripFence(reply))) {
		if err := s.cache.Set(ctx, key, []byte(reply), s.ttl); err != nil {
			s.logger.Warn("reply cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "reply", len(reply))
		}
	}
	return reply, nil
}

// Chat streams the model's answer to a free-form question. The request is
// issued when the stream starts; a failure to reach the model, or a
// failure mid-answer, ends the stream with a MODEL_UNAVAILABLE error after
// any fragments already delivered. Closing the stream early aborts the
// request.
func (s *Synthesizer) Chat(ctx context.Context, prompt, retrieved string) *stream.Stream {
	full := ChatPrompt(prompt, retrieved)
	model := s.model.Model()

	return stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
		inner, err := s.model.Stream(ctx, full)
		if err != nil {
			return errors.Wrap(errors.ErrCodeModelUnavailable, err, "model %s unavailable", model)
		}
		defer inner.Close()

		for inner.Next() {
			if !emit(inner.Text()) {
				return nil
			}
		}
		if err := inner.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeModelUnavailable, err, "model %s stream failed", model)
		}
		return nil
	})
}
