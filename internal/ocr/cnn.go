package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/yalue/onnxruntime_go"

	"github.com/MeKo-Tech/drawcheck/internal/mempool"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/onnx"
)

// CNNEngine wraps a single ONNX Runtime session that, in one
// invocation, both detects text boxes and recognizes their contents
// (spec.md §4.2: "single invocation; returns {text, value?, confidence,
// bbox, center}"). This collapses pogo's two-stage detector+recognizer
// pipeline into the one-pass contract the spec requires; pogo's split
// stays useful internally (see preprocess/postprocess below) but is not
// exposed as two Engine calls.
//
// The session is a process-local singleton, lazily initialized on first
// use (spec.md §9 "OCR heaviness": "process-local singletons with lazy
// init").
type CNNEngine struct {
	modelPath  string
	numThreads int

	// MinConfidence drops detections below this score (cnn_min_confidence,
	// spec.md §6, default 0.7). Zero disables filtering.
	MinConfidence float64

	// UseGPU requests CUDA execution for the session (cnn_use_gpu).
	// Ignored if no CUDA-capable onnxruntime build is present; the
	// session then runs on CPU as usual.
	UseGPU bool

	mu      sync.Mutex
	session *onnxruntime_go.DynamicAdvancedSession
	input   onnxruntime_go.InputOutputInfo
	output  onnxruntime_go.InputOutputInfo
}

// NewCNNEngine constructs a CNN-backed Engine bound to an ONNX model
// file. The session is not opened until the first Detect call.
func NewCNNEngine(modelPath string, numThreads int) *CNNEngine {
	return &CNNEngine{modelPath: modelPath, numThreads: numThreads}
}

func (e *CNNEngine) ensureSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		return nil
	}

	if !onnxruntime_go.IsInitialized() {
		if err := onnxruntime_go.InitializeEnvironment(); err != nil {
			return fmt.Errorf("cnn ocr: initialize onnxruntime: %w", err)
		}
	}

	inputs, outputs, err := onnxruntime_go.GetInputOutputInfo(e.modelPath)
	if err != nil {
		return fmt.Errorf("cnn ocr: read model io info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("cnn ocr: model %s declares no inputs/outputs", e.modelPath)
	}

	opts, err := onnxruntime_go.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("cnn ocr: session options: %w", err)
	}
	defer opts.Destroy()
	if e.numThreads > 0 {
		_ = opts.SetIntraOpNumThreads(e.numThreads)
	}
	if e.UseGPU {
		gpuCfg := onnx.DefaultGPUConfig()
		gpuCfg.UseGPU = true
		if err := onnx.ConfigureSessionForGPU(opts, gpuCfg); err != nil {
			slog.Warn("cnn ocr: gpu acceleration unavailable, falling back to cpu", "error", err)
		}
	}

	session, err := onnxruntime_go.NewDynamicAdvancedSession(e.modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, opts)
	if err != nil {
		return fmt.Errorf("cnn ocr: create session: %w", err)
	}

	e.session = session
	e.input = inputs[0]
	e.output = outputs[0]
	return nil
}

func (e *CNNEngine) Detect(ctx context.Context, img *model.Image) ([]model.TextRegion, error) {
	if err := e.ensureSession(); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		return nil, fmt.Errorf("cnn ocr: decode image: %w", err)
	}

	width, height := img.Bounds()
	tensor, scaleX, scaleY := preprocessForCNN(decoded, int(e.inputHeight()), int(e.inputWidth()))

	e.mu.Lock()
	session := e.session
	e.mu.Unlock()

	inputTensor, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("cnn ocr: build input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := []onnxruntime_go.Value{nil}
	runErr := session.Run([]onnxruntime_go.Value{inputTensor}, outputs)
	// The input tensor copies tensor.Data into its own onnxruntime-owned
	// backing store on construction, so the pool buffer can be returned
	// as soon as Run has read it.
	mempool.PutFloat32(tensor.Data)
	if runErr != nil {
		return nil, fmt.Errorf("cnn ocr: session run: %w", runErr)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	boxes, err := decodeCNNOutput(outputs[0], scaleX, scaleY, width, height)
	if err != nil {
		slog.Warn("cnn ocr decode failed", "error", err)
		return nil, nil
	}
	return e.filterByConfidence(boxes), nil
}

func (e *CNNEngine) filterByConfidence(regions []model.TextRegion) []model.TextRegion {
	if e.MinConfidence <= 0 {
		return regions
	}
	filtered := make([]model.TextRegion, 0, len(regions))
	for _, r := range regions {
		if r.Confidence >= e.MinConfidence {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (e *CNNEngine) inputHeight() int64 {
	if len(e.input.Dimensions) == 4 && e.input.Dimensions[2] > 0 {
		return e.input.Dimensions[2]
	}
	return 960
}

func (e *CNNEngine) inputWidth() int64 {
	if len(e.input.Dimensions) == 4 && e.input.Dimensions[3] > 0 {
		return e.input.Dimensions[3]
	}
	return 960
}
