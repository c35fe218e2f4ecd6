package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/MeKo-Tech/drawcheck/internal/config"
	"github.com/MeKo-Tech/drawcheck/internal/llm"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/pipeline"
)

// buildPipeline wires the four LLM provider roles and the rest of
// pipeline.Config from the resolved configuration, failing fast if a
// provider required by cfg.Review.Mode has no API key/model configured.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	apiKey := cfg.Providers.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("DRAWCHECK_API_KEY")
	}

	visionProvider, err := llm.NewGenAIProvider(ctx, apiKey, cfg.Providers.VisionModel, llm.NameVision)
	if err != nil {
		return nil, fmt.Errorf("build vision provider: %w", err)
	}
	reasoningProvider, err := llm.NewGenAIProvider(ctx, apiKey, cfg.Providers.ReasoningModel, llm.NameReasoning)
	if err != nil {
		return nil, fmt.Errorf("build reasoning provider: %w", err)
	}

	pipelineCfg := cfg.ToPipelineConfig()
	b := pipeline.NewBuilder().
		WithVisionProvider(visionProvider).
		WithReasoningProvider(reasoningProvider).
		WithMaxDimensionPx(cfg.Loader.MaxDimensionPx).
		WithCNNOCR(cfg.OCR.UseCNNOCR, cfg.OCR.CNNModelPath, cfg.OCR.CNNNumThreads).
		WithCNNMinConfidence(cfg.OCR.CNNMinConfidence).
		WithOCRConsensusThreshold(cfg.OCR.ConsensusThreshold).
		WithReviewMode(model.ReviewMode(cfg.Review.Mode)).
		WithTimeouts(pipelineCfg.TotalTimeout, pipelineCfg.CallTimeout)

	mode := model.ReviewMode(cfg.Review.Mode)
	if mode == model.ReviewModeAdversarial || mode == model.ReviewModeBoth {
		adversarialA, err := llm.NewGenAIProvider(ctx, apiKey, cfg.Providers.AdversarialModelA, llm.NameAdversarialA)
		if err != nil {
			return nil, fmt.Errorf("build adversarial provider A: %w", err)
		}
		adversarialB, err := llm.NewGenAIProvider(ctx, apiKey, cfg.Providers.AdversarialModelB, llm.NameAdversarialB)
		if err != nil {
			return nil, fmt.Errorf("build adversarial provider B: %w", err)
		}
		b = b.WithAdversarialProviders(adversarialA, adversarialB)
	}

	pl, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return pl, nil
}
