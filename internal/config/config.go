package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/drawcheck/internal/loader"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/pipeline"
)

const (
	infoLevel  = "info"
	structuredMode = "structured"
)

// DefaultConfig returns a configuration with sensible defaults, mirroring
// spec.md §6's documented ComparisonOptions/pipeline defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: infoLevel,
		Verbose:  false,
		Providers: ProvidersConfig{
			VisionModel:    "gemini-2.5-pro",
			ReasoningModel: "gemini-2.5-pro",
		},
		Loader: LoaderConfig{
			MaxDimensionPx: loader.DefaultOptions().MaxDimensionPx,
		},
		OCR: OCRConfig{
			UseCNNOCR:          true,
			CNNNumThreads:      4,
			CNNMinConfidence:   0.7,
			CNNUseGPU:          false,
			ConsensusThreshold: 2,
		},
		Review: ReviewConfig{
			Mode: structuredMode,
		},
		Timeouts: TimeoutConfig{
			TotalSec:   30 * 60,
			PerCallSec: 10 * 60,
		},
		Output: OutputConfig{
			Format:              "text",
			ConfidencePrecision: 2,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: false,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if err := c.validateBasicEnums(); err != nil {
		return err
	}
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validatePositiveIntegers(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBasicEnums() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	validModes := []string{"structured", "adversarial", "both"}
	if !slices.Contains(validModes, c.Review.Mode) {
		return fmt.Errorf("invalid review mode: %s (must be one of: %s)", c.Review.Mode, strings.Join(validModes, ", "))
	}

	return nil
}

func (c *Config) validateThresholds() error {
	if err := validateThreshold(c.OCR.CNNMinConfidence, "ocr.cnn_min_confidence"); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePositiveIntegers() error {
	if c.Loader.MaxDimensionPx <= 0 {
		return fmt.Errorf("invalid loader.max_dimension_px: %d (must be positive)", c.Loader.MaxDimensionPx)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch.workers: %d (must be positive)", c.Batch.Workers)
	}
	if c.Timeouts.TotalSec <= 0 {
		return fmt.Errorf("invalid timeouts.total_sec: %d (must be positive)", c.Timeouts.TotalSec)
	}
	if c.Timeouts.PerCallSec <= 0 {
		return fmt.Errorf("invalid timeouts.per_call_sec: %d (must be positive)", c.Timeouts.PerCallSec)
	}
	if c.OCR.UseCNNOCR && c.OCR.CNNModelPath == "" {
		return fmt.Errorf("ocr.use_cnn_ocr is true but ocr.cnn_model_path is empty")
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.Providers.VisionModel == "" {
		return fmt.Errorf("providers.vision_model is required")
	}
	if c.Providers.ReasoningModel == "" {
		return fmt.Errorf("providers.reasoning_model is required")
	}
	mode := c.Review.Mode
	if mode == "adversarial" || mode == "both" {
		if c.Providers.AdversarialModelA == "" || c.Providers.AdversarialModelB == "" {
			return fmt.Errorf("review.mode=%s requires providers.adversarial_model_a and providers.adversarial_model_b", mode)
		}
	}
	return nil
}

// ToPipelineConfig converts the config to the pipeline's own
// configuration shape, leaving provider construction (which needs an
// API key and a context) to the caller.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Loader:                loader.Options{MaxDimensionPx: c.Loader.MaxDimensionPx},
		UseCNNOCR:             c.OCR.UseCNNOCR,
		CNNModelPath:          c.OCR.CNNModelPath,
		CNNNumThreads:         c.OCR.CNNNumThreads,
		CNNMinConfidence:      c.OCR.CNNMinConfidence,
		CNNUseGPU:             c.OCR.CNNUseGPU,
		OCRConsensusThreshold: c.OCR.ConsensusThreshold,
		ReviewMode:            model.ReviewMode(c.Review.Mode),
		TotalTimeout:          time.Duration(c.Timeouts.TotalSec) * time.Second,
		CallTimeout:           time.Duration(c.Timeouts.PerCallSec) * time.Second,
	}
}

// validateThreshold validates that a value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %.2f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
