package synth

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cache"
	ferrors "github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/stream"
)

type fakeModel struct {
	reply     string
	err       error
	fragments []string
	streamErr error
	calls     atomic.Int32
	lastPrmpt atomic.Value
}

func (m *fakeModel) Model() string { return "fake" }

func (m *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	m.lastPrmpt.Store(prompt)
	return m.reply, m.err
}

func (m *fakeModel) Stream(ctx context.Context, prompt string) (*stream.Stream, error) {
	m.calls.Add(1)
	m.lastPrmpt.Store(prompt)
	if m.err != nil {
		return nil, m.err
	}
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
		for _, f := range m.fragments {
			if !emit(f) {
				return nil
			}
		}
		return m.streamErr
	}), nil
}

func (m *fakeModel) prompt() string {
	p, _ := m.lastPrmpt.Load().(string)
	return p
}

var quiet = log.New(io.Discard)

func TestLayoutPrompt(t *testing.T) {
	got := LayoutPrompt("two offices", "NFPA 13 excerpt")
	want := "Context:\nNFPA 13 excerpt\n\nUser Request:\ntwo offices\n\n" +
		"Return ONLY JSON with keys: rooms (list), sprinklers (list). Rooms must have name,x,y,width,height (in mm)."
	if got != want {
		t.Errorf("LayoutPrompt() = %q, want %q", got, want)
	}
}

func TestChatPrompt(t *testing.T) {
	got := ChatPrompt("max spacing?", "")
	want := "Context:\n\n\nUser Prompt:\nmax spacing?\n\nPlease answer concisely."
	if got != want {
		t.Errorf("ChatPrompt() = %q, want %q", got, want)
	}
}

func TestSynthesizeReturnsReplyUnmodified(t *testing.T) {
	reply := "```json\n{\"rooms\":[],\"sprinklers\":[]}\n```"
	m := &fakeModel{reply: reply}
	s := New(m, WithLogger(quiet))

	got, err := s.Synthesize(context.Background(), "one room", "ctx")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got != reply {
		t.Errorf("Synthesize() = %q, want %q", got, reply)
	}
	if !strings.Contains(m.prompt(), "User Request:\none room") {
		t.Errorf("prompt = %q", m.prompt())
	}
}

func TestSynthesizeModelUnavailable(t *testing.T) {
	m := &fakeModel{err: errors.New("connection refused")}
	s := New(m, WithLogger(quiet))

	_, err := s.Synthesize(context.Background(), "p", "")
	if !ferrors.Is(err, ferrors.ErrCodeModelUnavailable) {
		t.Fatalf("Synthesize() error = %v, want MODEL_UNAVAILABLE", err)
	}
	if ferrors.GetStage(err) != ferrors.StageSynthesize {
		t.Errorf("stage = %v, want synthesize", ferrors.GetStage(err))
	}
}

func TestSynthesizeCache(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	m := &fakeModel{reply: `{"rooms":[]}`}
	s := New(m, WithLogger(quiet), WithCache(store, nil, 0))

	for i := 0; i < 3; i++ {
		if _, err := s.Synthesize(context.Background(), "same", "ctx"); err != nil {
			t.Fatal(err)
		}
	}
	if n := m.calls.Load(); n != 1 {
		t.Errorf("model called %d times, want 1", n)
	}

	if _, err := s.Synthesize(context.Background(), "different", "ctx"); err != nil {
		t.Fatal(err)
	}
	if n := m.calls.Load(); n != 2 {
		t.Errorf("model called %d times, want 2", n)
	}
}

func TestSynthesizeDoesNotCacheUnparsableReplies(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	m := &fakeModel{reply: "Sure! Here is your layout:"}
	s := New(m, WithLogger(quiet), WithCache(store, nil, 0))

	s.Synthesize(context.Background(), "p", "")
	s.Synthesize(context.Background(), "p", "")
	if n := m.calls.Load(); n != 2 {
		t.Errorf("model called %d times, want 2", n)
	}
}

func TestChat(t *testing.T) {
	m := &fakeModel{fragments: []string{"Max ", "4.6 m", "."}}
	s := New(m, WithLogger(quiet))

	got, err := stream.Collect(s.Chat(context.Background(), "spacing?", "ctx"))
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "Max 4.6 m." {
		t.Errorf("Chat() = %q", got)
	}
	if !strings.HasSuffix(m.prompt(), "Please answer concisely.") {
		t.Errorf("prompt = %q", m.prompt())
	}
}

func TestChatStartFailure(t *testing.T) {
	m := &fakeModel{err: errors.New("dial tcp: connection refused")}
	s := New(m, WithLogger(quiet))

	got, err := stream.Collect(s.Chat(context.Background(), "q", ""))
	if got != "" {
		t.Errorf("Chat() text = %q, want empty", got)
	}
	if !ferrors.Is(err, ferrors.ErrCodeModelUnavailable) {
		t.Errorf("Chat() error = %v, want MODEL_UNAVAILABLE", err)
	}
}

func TestChatMidStreamFailureKeepsFragments(t *testing.T) {
	m := &fakeModel{fragments: []string{"partial "}, streamErr: errors.New("reset")}
	s := New(m, WithLogger(quiet))

	got, err := stream.Collect(s.Chat(context.Background(), "q", ""))
	if got != "partial " {
		t.Errorf("Chat() text = %q, want partial", got)
	}
	if !ferrors.Is(err, ferrors.ErrCodeModelUnavailable) {
		t.Errorf("Chat() error = %v, want MODEL_UNAVAILABLE", err)
	}
}

func TestChatEarlyClose(t *testing.T) {
	fragments := make([]string, 1000)
	for i := range fragments {
		fragments[i] = "x"
	}
	m := &fakeModel{fragments: fragments}
	s := New(m, WithLogger(quiet))

	st := s.Chat(context.Background(), "q", "")
	st.Next()
	st.Close()
	if st.Err() != nil {
		t.Errorf("Err() after early Close = %v", st.Err())
	}
}
