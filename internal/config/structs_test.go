package config

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestConfigJSONMarshaling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.Verbose = true
	cfg.Providers.VisionModel = "gemini-2.5-flash"

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if result["log_level"] != "debug" {
		t.Errorf("expected log_level 'debug', got %v", result["log_level"])
	}
	if result["verbose"] != true {
		t.Errorf("expected verbose true, got %v", result["verbose"])
	}
}

func TestConfigJSONUnmarshaling(t *testing.T) {
	jsonData := `{
		"log_level": "debug",
		"verbose": true,
		"providers": {"vision_model": "gemini-2.5-pro"},
		"ocr": {"use_cnn_ocr": true, "cnn_min_confidence": 0.8},
		"review": {"mode": "both"}
	}`

	var cfg Config
	if err := json.Unmarshal([]byte(jsonData), &cfg); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level 'debug', got %s", cfg.LogLevel)
	}
	if !cfg.Verbose {
		t.Error("expected verbose true")
	}
	if cfg.Providers.VisionModel != "gemini-2.5-pro" {
		t.Errorf("expected vision_model 'gemini-2.5-pro', got %s", cfg.Providers.VisionModel)
	}
	if cfg.OCR.CNNMinConfidence != 0.8 {
		t.Errorf("expected cnn_min_confidence 0.8, got %f", cfg.OCR.CNNMinConfidence)
	}
	if cfg.Review.Mode != "both" {
		t.Errorf("expected review mode 'both', got %s", cfg.Review.Mode)
	}
}

func TestConfigYAMLUnmarshaling(t *testing.T) {
	yamlData := `
log_level: error
verbose: true
providers:
  vision_model: gemini-2.5-pro
  reasoning_model: gemini-2.5-pro
ocr:
  use_cnn_ocr: true
  cnn_min_confidence: 0.65
  ocr_consensus_threshold: 3
review:
  mode: adversarial
`

	var cfg Config
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("expected log_level 'error', got %s", cfg.LogLevel)
	}
	if !cfg.Verbose {
		t.Error("expected verbose true")
	}
	if cfg.OCR.ConsensusThreshold != 3 {
		t.Errorf("expected ocr_consensus_threshold 3, got %d", cfg.OCR.ConsensusThreshold)
	}
	if cfg.Review.Mode != "adversarial" {
		t.Errorf("expected review mode 'adversarial', got %s", cfg.Review.Mode)
	}
}

func TestConfigRoundTripJSON(t *testing.T) {
	original := DefaultConfig()
	original.LogLevel = "debug"
	original.Verbose = true
	original.OCR.CNNMinConfidence = 0.42
	original.Review.Mode = "both"

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	var decoded Config
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if decoded.LogLevel != original.LogLevel {
		t.Errorf("LogLevel mismatch: expected %s, got %s", original.LogLevel, decoded.LogLevel)
	}
	if decoded.Verbose != original.Verbose {
		t.Errorf("Verbose mismatch: expected %v, got %v", original.Verbose, decoded.Verbose)
	}
	if decoded.OCR.CNNMinConfidence != original.OCR.CNNMinConfidence {
		t.Errorf("CNNMinConfidence mismatch: expected %f, got %f", original.OCR.CNNMinConfidence, decoded.OCR.CNNMinConfidence)
	}
	if decoded.Review.Mode != original.Review.Mode {
		t.Errorf("Review.Mode mismatch: expected %s, got %s", original.Review.Mode, decoded.Review.Mode)
	}
}

func TestConfigRoundTripYAML(t *testing.T) {
	original := DefaultConfig()
	original.LogLevel = "warn"
	original.Providers.AdversarialModelA = "model-a"
	original.Providers.AdversarialModelB = "model-b"
	original.Loader.MaxDimensionPx = 8192

	data, err := yaml.Marshal(original)
	if err != nil {
		t.Fatalf("yaml.Marshal() error: %v", err)
	}

	var decoded Config
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}

	if decoded.LogLevel != original.LogLevel {
		t.Errorf("LogLevel mismatch: expected %s, got %s", original.LogLevel, decoded.LogLevel)
	}
	if decoded.Providers.AdversarialModelA != original.Providers.AdversarialModelA {
		t.Errorf("AdversarialModelA mismatch: expected %s, got %s",
			original.Providers.AdversarialModelA, decoded.Providers.AdversarialModelA)
	}
	if decoded.Loader.MaxDimensionPx != original.Loader.MaxDimensionPx {
		t.Errorf("MaxDimensionPx mismatch: expected %d, got %d", original.Loader.MaxDimensionPx, decoded.Loader.MaxDimensionPx)
	}
}

func TestProvidersConfigStructure(t *testing.T) {
	cfg := ProvidersConfig{
		APIKey:            "secret",
		VisionModel:       "gemini-2.5-pro",
		ReasoningModel:    "gemini-2.5-pro",
		AdversarialModelA: "model-a",
		AdversarialModelB: "model-b",
	}

	if cfg.VisionModel != "gemini-2.5-pro" {
		t.Errorf("expected vision model 'gemini-2.5-pro', got %s", cfg.VisionModel)
	}
	if cfg.AdversarialModelA == cfg.AdversarialModelB {
		t.Error("expected distinct adversarial model endpoints")
	}
}

func TestOCRConfigStructure(t *testing.T) {
	cfg := OCRConfig{
		UseCNNOCR:          true,
		CNNModelPath:       "/models/cnn.onnx",
		CNNNumThreads:      4,
		CNNMinConfidence:   0.7,
		ConsensusThreshold: 2,
	}

	if !cfg.UseCNNOCR {
		t.Error("expected UseCNNOCR true")
	}
	if cfg.ConsensusThreshold != 2 {
		t.Errorf("expected ConsensusThreshold 2, got %d", cfg.ConsensusThreshold)
	}
}

func TestBatchConfigStructure(t *testing.T) {
	cfg := BatchConfig{
		Workers:         8,
		OutputDir:       "/batch/output",
		ContinueOnError: true,
	}

	if cfg.Workers != 8 {
		t.Errorf("expected Workers 8, got %d", cfg.Workers)
	}
	if !cfg.ContinueOnError {
		t.Error("expected ContinueOnError true")
	}
}

func TestZeroValuesVsDefaults(t *testing.T) {
	var zero Config
	defaults := DefaultConfig()

	if zero.LogLevel == defaults.LogLevel {
		t.Error("zero LogLevel should differ from default")
	}
	if zero.Batch.Workers == defaults.Batch.Workers {
		t.Error("zero Workers should differ from default")
	}
	if zero.Review.Mode == defaults.Review.Mode {
		t.Error("zero Review.Mode should differ from default")
	}
}
