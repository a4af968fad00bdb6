// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/AmineJanedi/RAG-AI-Project/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/AmineJanedi/RAG-AI-Project/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/AmineJanedi/RAG-AI-Project/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/fireai
package buildinfo

import "fmt"

// Link-time values.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the multi-line build description.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies FireAI in outgoing requests.
func UserAgent() string {
	return "fireai/" + Version
}
