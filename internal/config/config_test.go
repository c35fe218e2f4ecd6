package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != infoLevel {
		t.Errorf("expected log_level %q, got %q", infoLevel, cfg.LogLevel)
	}
	if cfg.Verbose {
		t.Error("expected verbose to be false")
	}
	if cfg.Review.Mode != structuredMode {
		t.Errorf("expected review mode %q, got %q", structuredMode, cfg.Review.Mode)
	}
	if cfg.OCR.ConsensusThreshold != 2 {
		t.Errorf("expected ocr consensus threshold 2, got %d", cfg.OCR.ConsensusThreshold)
	}
	if cfg.OCR.CNNMinConfidence != 0.7 {
		t.Errorf("expected cnn min confidence 0.7, got %f", cfg.OCR.CNNMinConfidence)
	}
	if cfg.Timeouts.TotalSec != 1800 {
		t.Errorf("expected total timeout 1800s, got %d", cfg.Timeouts.TotalSec)
	}
	if cfg.Timeouts.PerCallSec != 600 {
		t.Errorf("expected per-call timeout 600s, got %d", cfg.Timeouts.PerCallSec)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("expected batch workers 4, got %d", cfg.Batch.Workers)
	}
}

func TestValidateBasicEnums(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		format    string
		mode      string
		wantError bool
	}{
		{"valid defaults", infoLevel, "text", structuredMode, false},
		{"valid debug/json/both", "debug", "json", "both", false},
		{"invalid log level", "invalid", "text", structuredMode, true},
		{"invalid format", infoLevel, "xml", structuredMode, true},
		{"empty format is valid", infoLevel, "", structuredMode, false},
		{"invalid review mode", infoLevel, "text", "bogus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = tt.logLevel
			cfg.Output.Format = tt.format
			cfg.Review.Mode = tt.mode

			err := cfg.validateBasicEnums()
			if (err != nil) != tt.wantError {
				t.Errorf("validateBasicEnums() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateThresholds(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.validateThresholds(); err != nil {
		t.Errorf("expected valid thresholds, got %v", err)
	}

	cfg.OCR.CNNMinConfidence = 1.5
	if err := cfg.validateThresholds(); err == nil {
		t.Error("expected error for cnn_min_confidence > 1.0")
	}
}

func TestValidatePositiveIntegers(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*Config)
		wantError bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"loader max dimension zero", func(c *Config) { c.Loader.MaxDimensionPx = 0 }, true},
		{"batch workers negative", func(c *Config) { c.Batch.Workers = -1 }, true},
		{"total timeout zero", func(c *Config) { c.Timeouts.TotalSec = 0 }, true},
		{"per-call timeout zero", func(c *Config) { c.Timeouts.PerCallSec = 0 }, true},
		{"cnn ocr enabled without model path", func(c *Config) {
			c.OCR.UseCNNOCR = true
			c.OCR.CNNModelPath = ""
		}, true},
		{"cnn ocr enabled with model path", func(c *Config) {
			c.OCR.UseCNNOCR = true
			c.OCR.CNNModelPath = "/models/cnn.onnx"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setup(&cfg)

			err := cfg.validatePositiveIntegers()
			if (err != nil) != tt.wantError {
				t.Errorf("validatePositiveIntegers() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateProviders(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*Config)
		wantError bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing vision model", func(c *Config) { c.Providers.VisionModel = "" }, true},
		{"missing reasoning model", func(c *Config) { c.Providers.ReasoningModel = "" }, true},
		{"adversarial mode missing providers", func(c *Config) {
			c.Review.Mode = "adversarial"
		}, true},
		{"adversarial mode with providers", func(c *Config) {
			c.Review.Mode = "adversarial"
			c.Providers.AdversarialModelA = "model-a"
			c.Providers.AdversarialModelB = "model-b"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setup(&cfg)

			err := cfg.validateProviders()
			if (err != nil) != tt.wantError {
				t.Errorf("validateProviders() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LogLevel = "invalid"
		cfg.Loader.MaxDimensionPx = 0
		cfg.Providers.VisionModel = ""

		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error, got nil")
		}
	})
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCR.UseCNNOCR = true
	cfg.OCR.CNNModelPath = "/models/cnn.onnx"
	cfg.OCR.CNNNumThreads = 8
	cfg.Review.Mode = "both"
	cfg.Loader.MaxDimensionPx = 4096
	cfg.Timeouts.TotalSec = 60
	cfg.Timeouts.PerCallSec = 20

	pipelineCfg := cfg.ToPipelineConfig()

	if pipelineCfg.Loader.MaxDimensionPx != 4096 {
		t.Errorf("expected loader max dimension 4096, got %d", pipelineCfg.Loader.MaxDimensionPx)
	}
	if !pipelineCfg.UseCNNOCR {
		t.Error("expected UseCNNOCR to be true")
	}
	if pipelineCfg.CNNModelPath != "/models/cnn.onnx" {
		t.Errorf("expected cnn model path to carry through, got %q", pipelineCfg.CNNModelPath)
	}
	if string(pipelineCfg.ReviewMode) != "both" {
		t.Errorf("expected review mode both, got %q", pipelineCfg.ReviewMode)
	}
	if pipelineCfg.TotalTimeout.Seconds() != 60 {
		t.Errorf("expected total timeout 60s, got %v", pipelineCfg.TotalTimeout)
	}
	if pipelineCfg.CallTimeout.Seconds() != 20 {
		t.Errorf("expected call timeout 20s, got %v", pipelineCfg.CallTimeout)
	}
}

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		wantError bool
	}{
		{"valid 0.0", 0.0, false},
		{"valid 0.5", 0.5, false},
		{"valid 1.0", 1.0, false},
		{"invalid negative", -0.1, true},
		{"invalid too high", 1.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateThreshold(tt.value, "test")
			if (err != nil) != tt.wantError {
				t.Errorf("validateThreshold(%f) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
		})
	}
}
