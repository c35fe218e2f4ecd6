//nolint:lll
package config

// Config is the complete configuration for drawcheck. It supports
// loading from configuration files, environment variables, and
// command-line flags, mirroring pogo's layered config surface.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// LLM provider wiring (spec.md §5/§6)
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers" json:"providers"`

	// Image loader settings
	Loader LoaderConfig `mapstructure:"loader" yaml:"loader" json:"loader"`

	// OCR engine settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Review mode settings
	Review ReviewConfig `mapstructure:"review" yaml:"review" json:"review"`

	// Pipeline timeout budget
	Timeouts TimeoutConfig `mapstructure:"timeouts" yaml:"timeouts" json:"timeouts"`

	// Output formatting
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Batch processing of drawing-pair directories
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ProvidersConfig names the model endpoints the pipeline's four LLM
// roles bind to (VISION_MODEL, REASONING_MODEL, ADVERSARIAL_MODEL_A/B)
// and the credential used to reach them.
type ProvidersConfig struct {
	APIKey            string `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	VisionModel       string `mapstructure:"vision_model" yaml:"vision_model" json:"vision_model"`
	ReasoningModel    string `mapstructure:"reasoning_model" yaml:"reasoning_model" json:"reasoning_model"`
	AdversarialModelA string `mapstructure:"adversarial_model_a" yaml:"adversarial_model_a" json:"adversarial_model_a"`
	AdversarialModelB string `mapstructure:"adversarial_model_b" yaml:"adversarial_model_b" json:"adversarial_model_b"`
}

// LoaderConfig contains image-loading settings.
type LoaderConfig struct {
	MaxDimensionPx int `mapstructure:"max_dimension_px" yaml:"max_dimension_px" json:"max_dimension_px"`
}

// OCRConfig contains text-detection settings (spec.md §4.1/§6).
type OCRConfig struct {
	UseCNNOCR             bool    `mapstructure:"use_cnn_ocr" yaml:"use_cnn_ocr" json:"use_cnn_ocr"`
	CNNModelPath          string  `mapstructure:"cnn_model_path" yaml:"cnn_model_path" json:"cnn_model_path"`
	CNNNumThreads         int     `mapstructure:"cnn_num_threads" yaml:"cnn_num_threads" json:"cnn_num_threads"`
	CNNMinConfidence      float64 `mapstructure:"cnn_min_confidence" yaml:"cnn_min_confidence" json:"cnn_min_confidence"`
	CNNUseGPU             bool    `mapstructure:"cnn_use_gpu" yaml:"cnn_use_gpu" json:"cnn_use_gpu"`
	ConsensusThreshold    int     `mapstructure:"ocr_consensus_threshold" yaml:"ocr_consensus_threshold" json:"ocr_consensus_threshold"`
}

// ReviewConfig selects review_mode ("structured" | "adversarial" |
// "both", spec.md §6).
type ReviewConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode" json:"mode"`
}

// TimeoutConfig contains the pipeline's total and per-external-call
// cancellation budget (spec.md §5).
type TimeoutConfig struct {
	TotalSec   int `mapstructure:"total_sec" yaml:"total_sec" json:"total_sec"`
	PerCallSec int `mapstructure:"per_call_sec" yaml:"per_call_sec" json:"per_call_sec"`
}

// OutputConfig contains result formatting settings.
type OutputConfig struct {
	Format              string `mapstructure:"format" yaml:"format" json:"format"`
	File                string `mapstructure:"file" yaml:"file" json:"file"`
	ConfidencePrecision int    `mapstructure:"confidence_precision" yaml:"confidence_precision" json:"confidence_precision"`
}

// BatchConfig contains settings for comparing directories of drawing
// pairs in one invocation.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
