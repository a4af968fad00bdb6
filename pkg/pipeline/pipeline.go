// Package pipeline turns a design request into a canonical layout and the
// artifacts derived from it.
//
// This package is the single entry point shared by the CLI and the HTTP
// server. By centralizing orchestration here, both surfaces report the
// same result envelope and the same stage-tagged errors.
//
// # Architecture
//
// One invocation moves through these stages:
//
//  1. Input: pick the caller's layout (upload, then inline JSON) or prompt
//  2. Retrieve: collect context snippets for the prompt (never fatal)
//  3. Synthesize: ask the model for a layout
//  4. Validate: normalize the model reply or caller JSON into a [layout.Layout]
//  5. Render and Report: run concurrently over the same canonical layout;
//     the geometry drawing on one side, cost estimate then reports on the other
//
// A failure in any stage ends the invocation with a [Result] whose Status is
// [StatusError], naming the stage. Files already written by the failed
// invocation are removed.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, synth,
//	    pipeline.WithRetriever(index),
//	    pipeline.WithLogger(logger))
//	res := runner.Execute(ctx, pipeline.Request{Prompt: "two offices"})
//	if res.Status == pipeline.StatusError {
//	    fmt.Println(res.Stage, res.Message)
//	}
//
// [layout.Layout]: github.com/AmineJanedi/RAG-AI-Project/pkg/layout
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/cost"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/retrieval"
)

// =============================================================================
// Default Values
// =============================================================================

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Financial report formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// DefaultFinancialFormat is the default financial report format.
const DefaultFinancialFormat = FormatPDF

// DefaultTopK is the default number of context snippets per prompt.
const DefaultTopK = retrieval.DefaultK

// ValidFinancialFormats is the set of supported financial report formats.
var ValidFinancialFormats = map[string]bool{
	FormatPDF:  true,
	FormatXLSX: true,
}

// ValidateFinancialFormat checks that a financial report format is supported.
func ValidateFinancialFormat(format string) error {
	if !ValidFinancialFormats[format] {
		return fmt.Errorf("invalid financial format: %q (must be pdf or xlsx)", format)
	}
	return nil
}

// =============================================================================
// Collaborators
// =============================================================================

// Retriever supplies context snippets for a prompt.
type Retriever interface {
	Retrieve(query string, k int) []string

	// Degraded reports why retrieved context may be incomplete, or nil.
	Degraded() error
}

// Synthesizer obtains a layout reply for a prompt and retrieved context.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt, retrieved string) (string, error)
}

// =============================================================================
// Request and Result
// =============================================================================

// Request is one invocation's input. When several inputs are set, Upload
// wins over LayoutJSON, which wins over Prompt. Blank values are unset.
type Request struct {
	Prompt     string
	LayoutJSON string
	Upload     []byte
}

// Source returns which input an invocation will use: "upload",
// "layout_json", "prompt", or "" when none is usable.
func (r Request) Source() string {
	switch {
	case len(strings.TrimSpace(string(r.Upload))) > 0:
		return "upload"
	case strings.TrimSpace(r.LayoutJSON) != "":
		return "layout_json"
	case strings.TrimSpace(r.Prompt) != "":
		return "prompt"
	}
	return ""
}

// Files holds the public references of the generated artifacts.
type Files struct {
	Geometry        string `json:"geometry"`
	TechnicalReport string `json:"technical_report"`
	FinancialReport string `json:"financial_report"`
}

// Result is the outcome of one invocation. On success Layout, Files and
// Cost are set; on failure Stage and Message describe what went wrong.
type Result struct {
	Status  string         `json:"status"`
	Stage   string         `json:"stage,omitempty"`
	Message string         `json:"message,omitempty"`
	Detail  string         `json:"detail,omitempty"`
	Layout  *layout.Layout `json:"layout,omitempty"`
	Files   *Files         `json:"files,omitempty"`
	Cost    *cost.Summary  `json:"cost,omitempty"`

	// Warnings lists non-fatal problems, such as degraded retrieval.
	Warnings []string `json:"warnings,omitempty"`

	// Paths maps artifact kinds to local file paths.
	Paths map[string]string `json:"-"`

	// Err is the failure behind a StatusError result.
	Err error `json:"-"`

	Stats Stats `json:"-"`
}

// Stats contains timing and size information for an invocation.
type Stats struct {
	Source         string
	Snippets       int
	RetrieveTime   time.Duration
	SynthesizeTime time.Duration
	ValidateTime   time.Duration
	RenderTime     time.Duration
	ReportTime     time.Duration
	Repairs        layout.Repairs
}

// OK reports whether the invocation succeeded.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// fail builds the error envelope for err.
func fail(err error, stats Stats) Result {
	stage := string(errors.GetStage(err))
	if stage == "" {
		stage = "internal"
	}
	return Result{
		Status:  StatusError,
		Stage:   stage,
		Message: errors.UserMessage(err),
		Detail:  errors.GetDetail(err),
		Err:     err,
		Stats:   stats,
	}
}
