// Package ollama provides a client for the Ollama text generation API.
//
// The client posts {model, prompt, stream} to the /api/generate endpoint.
// Replies are read leniently, since different server versions shape them
// differently:
//
//   - a "response" string field is the text
//   - otherwise a "message.content" string field is the text
//   - otherwise the raw body (or raw line, when streaming) is the text
//
// Streaming replies are newline-delimited JSON. Each non-empty line is
// decoded the same way and handed to the consumer as one fragment; a line
// with "done": true ends the stream, and a line carrying an "error" field
// ends it with that error.
package ollama
