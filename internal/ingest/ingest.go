// Package ingest implements the Ingestor (spec.md §4.3 component C3):
// five ordered phases that turn a canonical Image plus OCR output into a
// frozen model.MachineState. Each phase is close to pure-functional; the
// only side effects are the vision-LLM call (Phase A) and the optional
// focused-reverification LLM call (Phase E).
package ingest

import (
	"bytes"
	"context"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/drawcheck/internal/llm"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/ocr"
)

// Ingestor wires the five Phase A-E functions together behind one
// Ingest call. VisionProvider and ReasoningProvider may be the same
// underlying client; they are named separately because spec.md §6
// assigns them distinct model-tier environment variables
// (VISION_MODEL, REASONING_MODEL).
type Ingestor struct {
	VisionProvider    llm.Provider
	ReasoningProvider llm.Provider
	OCREngine         ocr.Engine
}

// New constructs an Ingestor.
func New(vision, reasoning llm.Provider, ocrEngine ocr.Engine) *Ingestor {
	return &Ingestor{VisionProvider: vision, ReasoningProvider: reasoning, OCREngine: ocrEngine}
}

// Ingest runs all five phases over img, producing a frozen MachineState.
// Fatal errors (vision_rpc_exhausted, response_unparseable) abort this
// drawing; every other phase degrades quality on failure without
// aborting, per spec.md §4.3's "Errors surfaced by C3".
func (ing *Ingestor) Ingest(ctx context.Context, img *model.Image) (*model.MachineState, error) {
	// Vision-LLM extraction and OCR detection touch independent inputs
	// (a hosted RPC call vs. a local detector pass over the same image)
	// so they run concurrently, per spec.md §5.
	type visionResult struct {
		raw *rawExtraction
		err error
	}
	type ocrResult struct {
		regions []model.TextRegion
		err     error
	}
	visionCh := make(chan visionResult, 1)
	ocrCh := make(chan ocrResult, 1)

	go func() {
		raw, err := VisionExtract(ctx, ing.VisionProvider, img)
		visionCh <- visionResult{raw, err}
	}()
	go func() {
		regions, err := ing.runOCR(ctx, img)
		ocrCh <- ocrResult{regions, err}
	}()

	vr := <-visionCh
	or := <-ocrCh

	if vr.err != nil {
		return nil, vr.err
	}
	raw := vr.raw

	regions := or.regions
	if or.err != nil {
		slog.Warn("ocr engine failed during ingestion, continuing with empty regions",
			"error", model.NewPipelineError(stageName, model.ErrOCREngine, or.err))
	}

	pending := buildDimensions(raw.Dimensions)
	dims, gdts := bindSpatial(pending, raw.GDTCallouts, raw.PartList, img.WidthPx, img.HeightPx)
	zones := enrichZoneSpans(raw.Zones, dims, img.WidthPx, img.HeightPx)

	decoded, decErr := image.Decode(bytes.NewReader(img.Bytes))
	if decErr != nil {
		slog.Warn("phase e: could not decode canonical image for pixel-level checks", "error", decErr)
	} else {
		RescueCoordinates(dims, decoded)
	}

	CrossCheckWithOCR(dims, regions)

	if decoded != nil {
		RegionOCRVerify(dims, decoded)
	}

	FocusedLLMReverify(ctx, ing.ReasoningProvider, img, dims)

	ApplySmallTextPenalty(dims, img.SmallTextDetected)

	state := &model.MachineState{
		Zones:       zones,
		Dimensions:  dims,
		PartList:    raw.PartList,
		GDTCallouts: gdts,
		TitleBlock:  raw.TitleBlock,
		RawText:     raw.RawText,
		Image:       img,
		Regions:     regions,
	}
	return state, nil
}

func (ing *Ingestor) runOCR(ctx context.Context, img *model.Image) ([]model.TextRegion, error) {
	if ing.OCREngine == nil {
		return nil, nil
	}
	return ing.OCREngine.Detect(ctx, img)
}
