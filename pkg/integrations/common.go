package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single-shot model request.
const DefaultTimeout = 120 * time.Second

// maxErrorBody limits how much of a failed response body is kept.
const maxErrorBody = 512

// ErrNetwork is returned for transport failures (connection refused,
// timeouts, resets).
var ErrNetwork = errors.New("network error")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int    // HTTP status code
	Body string // leading bytes of the response body
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// NewHTTPClient creates an HTTP client whose transport bounds the wait for
// response headers. It sets no overall timeout so streamed bodies can be
// read for as long as the consumer wants.
func NewHTTPClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}
