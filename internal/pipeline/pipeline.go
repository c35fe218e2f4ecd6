// Package pipeline wires the Loader, OCR Engine, Ingestor, Comparator,
// and Adversarial Reviewer into the single Run entry point described by
// spec.md §6, following pogo's internal/pipeline Builder/Config/
// Pipeline/Close/Info pattern — re-targeted from OCR-model wiring to
// the five-component drawing-comparison chain.
package pipeline

import (
	"errors"
	"time"

	"github.com/MeKo-Tech/drawcheck/internal/compare"
	"github.com/MeKo-Tech/drawcheck/internal/ingest"
	"github.com/MeKo-Tech/drawcheck/internal/llm"
	"github.com/MeKo-Tech/drawcheck/internal/loader"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/ocr"
	"github.com/MeKo-Tech/drawcheck/internal/review"
)

// Config holds configuration for the comparison pipeline and its
// component wiring.
type Config struct {
	Loader loader.Options

	UseCNNOCR             bool
	CNNModelPath          string
	CNNNumThreads         int
	CNNMinConfidence      float64
	CNNUseGPU             bool
	OCRConsensusThreshold int

	ReviewMode model.ReviewMode

	// TotalTimeout and CallTimeout implement spec.md §5's recommended
	// 30-minute-total / 10-minute-per-external-call cancellation
	// budget.
	TotalTimeout time.Duration
	CallTimeout  time.Duration
}

// DefaultConfig returns spec.md §6's documented option defaults.
func DefaultConfig() Config {
	return Config{
		Loader:                loader.DefaultOptions(),
		UseCNNOCR:             true,
		CNNNumThreads:         4,
		CNNMinConfidence:      0.7,
		OCRConsensusThreshold: 2,
		ReviewMode:            model.ReviewModeStructured,
		TotalTimeout:          30 * time.Minute,
		CallTimeout:           10 * time.Minute,
	}
}

// Builder constructs a Pipeline with fluent configuration, mirroring
// pogo's pipeline Builder.
type Builder struct {
	cfg Config

	visionProvider       llm.Provider
	reasoningProvider    llm.Provider
	adversarialProviderA llm.Provider
	adversarialProviderB llm.Provider

	sink EventSink
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig(), sink: NopSink{}}
}

// WithMaxDimensionPx overrides the Loader's adaptive-upscale cap.
func (b *Builder) WithMaxDimensionPx(px int) *Builder {
	if px > 0 {
		b.cfg.Loader.MaxDimensionPx = px
	}
	return b
}

// WithVisionProvider sets the Phase A vision-LLM provider (VISION_MODEL).
func (b *Builder) WithVisionProvider(p llm.Provider) *Builder {
	b.visionProvider = p
	return b
}

// WithReasoningProvider sets the Phase E focused-reverification provider
// (REASONING_MODEL), also used for Phase 2 LLM-fallback matching.
func (b *Builder) WithReasoningProvider(p llm.Provider) *Builder {
	b.reasoningProvider = p
	return b
}

// WithAdversarialProviders sets the two distinct model endpoints the
// Adversarial Reviewer's rounds use (ADVERSARIAL_MODEL_A/B). Spec.md §5
// requires these be genuinely different endpoints, never funneled
// through a single-flight lock.
func (b *Builder) WithAdversarialProviders(a, c llm.Provider) *Builder {
	b.adversarialProviderA = a
	b.adversarialProviderB = c
	return b
}

// WithCNNOCR toggles the CNN detector and its model path/thread count
// (USE_CNN_OCR).
func (b *Builder) WithCNNOCR(enabled bool, modelPath string, numThreads int) *Builder {
	b.cfg.UseCNNOCR = enabled
	if modelPath != "" {
		b.cfg.CNNModelPath = modelPath
	}
	if numThreads > 0 {
		b.cfg.CNNNumThreads = numThreads
	}
	return b
}

// WithCNNMinConfidence sets cnn_min_confidence (CNN_OCR_MIN_CONFIDENCE).
func (b *Builder) WithCNNMinConfidence(conf float64) *Builder {
	if conf > 0 {
		b.cfg.CNNMinConfidence = conf
	}
	return b
}

// WithCNNGPU toggles CUDA acceleration for the CNN OCR session
// (CNN_OCR_USE_GPU). Has no effect when the CNN engine is disabled or
// when no CUDA-capable onnxruntime build is available; the session
// falls back to CPU execution in that case.
func (b *Builder) WithCNNGPU(useGPU bool) *Builder {
	b.cfg.CNNUseGPU = useGPU
	return b
}

// WithOCRConsensusThreshold sets ocr_consensus_threshold
// (CNN_OCR_CONSENSUS_THRESHOLD). A value <= 1 disables consensus
// filtering.
func (b *Builder) WithOCRConsensusThreshold(threshold int) *Builder {
	b.cfg.OCRConsensusThreshold = threshold
	return b
}

// WithReviewMode sets review_mode ("structured" | "adversarial" |
// "both").
func (b *Builder) WithReviewMode(mode model.ReviewMode) *Builder {
	if mode != "" {
		b.cfg.ReviewMode = mode
	}
	return b
}

// WithTimeouts overrides the total-pipeline and per-external-call
// timeout budget (spec.md §5).
func (b *Builder) WithTimeouts(total, perCall time.Duration) *Builder {
	if total > 0 {
		b.cfg.TotalTimeout = total
	}
	if perCall > 0 {
		b.cfg.CallTimeout = perCall
	}
	return b
}

// WithEventSink sets the progress-event collaborator (spec.md §6's
// EventSink interface). Defaults to NopSink.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	if sink != nil {
		b.sink = sink
	}
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that required providers are wired and configuration
// looks sane.
func (b *Builder) Validate() error {
	if b.visionProvider == nil {
		return errors.New("vision provider is required")
	}
	if b.reasoningProvider == nil {
		return errors.New("reasoning provider is required")
	}
	if b.cfg.ReviewMode == model.ReviewModeAdversarial || b.cfg.ReviewMode == model.ReviewModeBoth {
		if b.adversarialProviderA == nil || b.adversarialProviderB == nil {
			return errors.New("adversarial review requires both adversarial providers")
		}
	}
	if b.cfg.UseCNNOCR && b.cfg.CNNModelPath == "" {
		return errors.New("cnn ocr enabled but no model path configured")
	}
	if b.cfg.Loader.MaxDimensionPx <= 0 {
		return errors.New("loader max dimension must be > 0")
	}
	return nil
}

// Pipeline wires together the Loader, OCR Engine, Ingestor, Comparator,
// and Adversarial Reviewer behind one Run call.
type Pipeline struct {
	cfg Config

	Loader    *loader.Loader
	OCREngine ocr.Engine
	Ingestor  *ingest.Ingestor
	Matcher   compare.LLMMatcher
	Reviewer  *review.Reviewer

	sink EventSink
}

// Build initializes the pipeline's components.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	ld := loader.New(b.cfg.Loader)

	traditional := ocr.NewTraditionalEngine()
	var cnn ocr.Engine
	if b.cfg.UseCNNOCR {
		eng := ocr.NewCNNEngine(b.cfg.CNNModelPath, b.cfg.CNNNumThreads)
		eng.MinConfidence = b.cfg.CNNMinConfidence
		eng.UseGPU = b.cfg.CNNUseGPU
		cnn = eng
	}
	composite := ocr.NewCompositeEngine(traditional, cnn, b.cfg.UseCNNOCR)
	composite.ConsensusThreshold = b.cfg.OCRConsensusThreshold

	ing := ingest.New(b.visionProvider, b.reasoningProvider, composite)

	var matcher compare.LLMMatcher
	if b.reasoningProvider != nil {
		matcher = compare.NewProviderMatcher(b.reasoningProvider)
	}

	var reviewer *review.Reviewer
	if b.cfg.ReviewMode == model.ReviewModeAdversarial || b.cfg.ReviewMode == model.ReviewModeBoth {
		reviewer = review.New(b.adversarialProviderA, b.adversarialProviderB)
	}

	return &Pipeline{
		cfg:       b.cfg,
		Loader:    ld,
		OCREngine: composite,
		Ingestor:  ing,
		Matcher:   matcher,
		Reviewer:  reviewer,
		sink:      b.sink,
	}, nil
}

// Close releases pipeline resources. The OCR engines and LLM providers
// are process-local singletons per spec.md §5 ("must be initialized
// once per process, lazily") so nothing here closes connections that
// outlive this Pipeline; Close exists for symmetry with the teacher's
// lifecycle and for future resource teardown (e.g. an ONNX Runtime
// session explicitly released between pipeline instances in tests).
func (p *Pipeline) Close() error {
	return nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Info returns a map describing the pipeline's active wiring, mirroring
// pogo's pipeline.Info().
func (p *Pipeline) Info() map[string]interface{} {
	return map[string]interface{}{
		"loader": map[string]interface{}{
			"max_dimension_px": p.cfg.Loader.MaxDimensionPx,
		},
		"ocr": map[string]interface{}{
			"use_cnn_ocr":             p.cfg.UseCNNOCR,
			"cnn_min_confidence":      p.cfg.CNNMinConfidence,
			"ocr_consensus_threshold": p.cfg.OCRConsensusThreshold,
		},
		"review_mode":   string(p.cfg.ReviewMode),
		"has_reviewer":  p.Reviewer != nil,
		"has_matcher":   p.Matcher != nil,
		"total_timeout": p.cfg.TotalTimeout.String(),
		"call_timeout":  p.cfg.CallTimeout.String(),
		"memory":        GetMemStats(),
	}
}

// errPipelineTimeout is returned (wrapped in a PipelineError) when
// Run's outer timeout fires, per spec.md §7.
var errPipelineTimeout = errors.New("pipeline exceeded total timeout budget")

// fatalError reports whether err should abort the pair rather than
// degrade one drawing's quality (spec.md §7's taxonomy, reached through
// model.PipelineError.Fatal()).
func fatalError(err error) bool {
	var pe *model.PipelineError
	if errors.As(err, &pe) {
		return pe.Fatal()
	}
	return err != nil
}

