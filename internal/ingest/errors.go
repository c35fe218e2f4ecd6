package ingest

import "github.com/MeKo-Tech/drawcheck/internal/model"

// stageName identifies this package's stage in model.PipelineError,
// matching the "ingestor" string spec.md §6 uses for EventSink/
// error-taxonomy reporting.
const stageName = "ingestor"

// errVisionExhausted wraps err as the fatal vision_rpc_exhausted kind
// (spec.md §4.3 "Errors surfaced by C3").
func errVisionExhausted(err error) *model.PipelineError {
	return model.NewPipelineError(stageName, model.ErrVisionRPCExhausted, err)
}

// errResponseUnparseable wraps err as the fatal response_unparseable
// kind.
func errResponseUnparseable(err error) *model.PipelineError {
	return model.NewPipelineError(stageName, model.ErrResponseUnparseable, err)
}
