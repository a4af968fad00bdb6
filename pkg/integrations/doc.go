// Package integrations provides HTTP clients for the external services the
// pipeline calls.
//
// # Overview
//
// [Client] is the shared JSON-over-HTTP transport: it encodes request
// bodies, applies default headers, retries transient failures with
// [httputil.Retry], classifies response status codes, and reports every
// request to the [observability.HTTPHooks] registry. Service-specific
// clients embed it:
//
//   - [ollama]: the Ollama /api/generate endpoint, single-shot and streaming
//
// Each call carries a fresh [RequestIDHeader] that its retries reuse.
//
// # Errors
//
// Transport failures wrap [ErrNetwork]. Non-2xx responses are returned as
// [*StatusError], which carries the status code and a bounded excerpt of
// the response body. Callers at the pipeline boundary translate both into
// MODEL_UNAVAILABLE.
//
// # Timeouts
//
// Single-shot requests are bounded by the client timeout end to end.
// Streaming requests only bound the wait for response headers, so a long
// answer is never cut off mid-stream; the consumer ends it by closing the
// stream.
package integrations
