package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/integrations"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/stream"
)

// Defaults match a stock local Ollama install.
const (
	DefaultURL   = "http://localhost:11434/api/generate"
	DefaultModel = "llama3"
)

// maxLine bounds a single NDJSON line.
const maxLine = 1 << 20

// ErrModel is returned when the server reports an error inside a stream.
var ErrModel = errors.New("model error")

// Client talks to one generate endpoint with one model.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	url   string
	model string
}

// NewClient creates an Ollama client. Empty url or model fall back to
// [DefaultURL] and [DefaultModel].
func NewClient(url, model string, opts ...integrations.Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		Client: integrations.NewClient(opts...),
		url:    url,
		model:  model,
	}
}

// Model returns the model name requests are sent with.
func (c *Client) Model() string {
	return c.model
}

// URL returns the generate endpoint.
func (c *Client) URL() string {
	return c.url
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Generate sends prompt and returns the complete reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	data, err := c.Post(ctx, c.url, generateRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return ExtractText(data), nil
}

// Stream sends prompt with streaming enabled and returns the reply as a
// fragment stream. Failing to start the request is reported immediately;
// failures while reading are reported by the stream's Err.
func (c *Client) Stream(ctx context.Context, prompt string) (*stream.Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	body, err := c.PostStream(ctx, c.url, generateRequest{Model: c.model, Prompt: prompt, Stream: true})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ollama stream: %w", err)
	}

	return stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
		defer cancel()
		defer body.Close()

		sc := bufio.NewScanner(body)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			line := sc.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			chunk := parseLine(line)
			if chunk.err != "" {
				return fmt.Errorf("%w: %s", ErrModel, chunk.err)
			}
			if chunk.text != "" && !emit(chunk.text) {
				return nil
			}
			if chunk.done {
				return nil
			}
		}
		if err := sc.Err(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: read stream: %v", integrations.ErrNetwork, err)
		}
		return nil
	}), nil
}

// reply covers both reply shapes Ollama produces.
type reply struct {
	Response *string `json:"response"`
	Message  *struct {
		Content *string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// ExtractText returns the reply text of a non-streaming response body:
// the "response" field, else "message.content", else the body itself.
func ExtractText(data []byte) string {
	var r reply
	if err := json.Unmarshal(data, &r); err == nil {
		if text, ok := r.text(); ok {
			return text
		}
	}
	return string(data)
}

func (r reply) text() (string, bool) {
	if r.Response != nil {
		return *r.Response, true
	}
	if r.Message != nil && r.Message.Content != nil {
		return *r.Message.Content, true
	}
	return "", false
}

type chunk struct {
	text string
	done bool
	err  string
}

// parseLine decodes one NDJSON line. Lines that are not JSON objects, or
// objects without a recognized text field, pass through verbatim.
func parseLine(line string) chunk {
	var r reply
	if err := json.Unmarshal([]byte(line), &r); err != nil {
		return chunk{text: line}
	}
	if r.Error != "" {
		return chunk{err: r.Error}
	}
	if text, ok := r.text(); ok {
		return chunk{text: text, done: r.Done}
	}
	if r.Done {
		return chunk{done: true}
	}
	return chunk{text: line}
}
