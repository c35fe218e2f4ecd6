package model

import "fmt"

// ErrorKind enumerates the fatal/non-fatal error taxonomy of spec.md §7.
type ErrorKind string

const (
	ErrPDFDecode           ErrorKind = "pdf_decode"
	ErrImageDecode         ErrorKind = "image_decode"
	ErrUnsupportedFormat   ErrorKind = "unsupported_format"
	ErrVisionRPCExhausted  ErrorKind = "vision_rpc_exhausted"
	ErrResponseUnparseable ErrorKind = "response_unparseable"
	ErrReverifyRPCFailed   ErrorKind = "reverify_rpc_failed"
	ErrOCREngine           ErrorKind = "ocr_engine_error"
	ErrReviewerRound       ErrorKind = "reviewer_round_failed"
	ErrPipelineTimeout     ErrorKind = "pipeline_timeout"
)

// PipelineError is the typed error carried across component boundaries.
// Fatal kinds abort the owning drawing pair; non-fatal kinds are logged
// and degrade quality only (spec.md §7).
type PipelineError struct {
	Kind    ErrorKind
	Stage   string
	Wrapped error
}

func (e *PipelineError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
}

func (e *PipelineError) Unwrap() error { return e.Wrapped }

// Fatal reports whether this error kind aborts the owning drawing pair.
func (e *PipelineError) Fatal() bool {
	switch e.Kind {
	case ErrPDFDecode, ErrImageDecode, ErrUnsupportedFormat,
		ErrVisionRPCExhausted, ErrResponseUnparseable, ErrPipelineTimeout:
		return true
	default:
		return false
	}
}

// NewPipelineError constructs a PipelineError.
func NewPipelineError(stage string, kind ErrorKind, wrapped error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: kind, Wrapped: wrapped}
}
