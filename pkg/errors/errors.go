// Package errors provides structured error types for the FireAI pipeline.
//
// Every fatal failure the pipeline can report carries a machine-readable
// [Code] and the pipeline [Stage] it originated from, so the CLI and the
// HTTP surface can render the same {status, stage, message} envelope.
//
// # Error Codes
//
//   - BAD_REQUEST: no usable input, or caller-supplied layout JSON is malformed
//   - MODEL_UNAVAILABLE: the language model could not be reached or failed
//   - INVALID_LAYOUT: model output could not be parsed into a layout
//   - RENDER_FAILURE: the geometry artifact could not be written
//   - REPORT_FAILURE: a PDF or workbook could not be composed
//   - RETRIEVAL_DEGRADED: corpus problems; never fatal, only logged
//
// # Usage
//
//	err := errors.New(errors.ErrCodeBadRequest, "no input provided")
//	if errors.Is(err, errors.ErrCodeBadRequest) {
//	    // 400
//	}
//
//	err := errors.Wrap(errors.ErrCodeModelUnavailable, origErr, "model call failed")
package errors

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Code represents a machine-readable error code.
type Code string

// Error codes, one per failure class of the pipeline.
const (
	ErrCodeBadRequest        Code = "BAD_REQUEST"
	ErrCodeModelUnavailable  Code = "MODEL_UNAVAILABLE"
	ErrCodeInvalidLayout     Code = "INVALID_LAYOUT"
	ErrCodeRenderFailure     Code = "RENDER_FAILURE"
	ErrCodeReportFailure     Code = "REPORT_FAILURE"
	ErrCodeRetrievalDegraded Code = "RETRIEVAL_DEGRADED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Stage names the pipeline step an error originated from.
type Stage string

const (
	StageInput      Stage = "input"
	StageRetrieve   Stage = "retrieve"
	StageSynthesize Stage = "synthesize"
	StageValidate   Stage = "validate"
	StageRender     Stage = "render"
	StageReport     Stage = "report"
)

// MaxDetail is the maximum number of bytes of raw model output kept on an
// INVALID_LAYOUT error.
const MaxDetail = 1000

// StageOf returns the stage a code is reported under.
func StageOf(code Code) Stage {
	switch code {
	case ErrCodeBadRequest:
		return StageInput
	case ErrCodeModelUnavailable:
		return StageSynthesize
	case ErrCodeInvalidLayout:
		return StageValidate
	case ErrCodeRenderFailure:
		return StageRender
	case ErrCodeReportFailure:
		return StageReport
	case ErrCodeRetrievalDegraded:
		return StageRetrieve
	}
	return ""
}

// Error is a structured error with a code, stage and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Stage   Stage  // Pipeline stage
	Message string // Human-readable message
	Detail  string // Diagnostic payload (raw model text for INVALID_LAYOUT)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches raw diagnostic text, truncated to [MaxDetail] bytes.
func (e *Error) WithDetail(raw string) *Error {
	e.Detail = Truncate(raw, MaxDetail)
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Stage:   StageOf(code),
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Stage:   StageOf(code),
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetStage extracts the pipeline stage from an error, if available.
func GetStage(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// GetDetail returns the diagnostic payload attached to err, if any.
func GetDetail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message with the cause appended but without
// the code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
