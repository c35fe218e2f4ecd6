// Package llm isolates every model provider behind the generic
// generate_json contract (spec.md §6, design note "Provider SDK
// coupling"): the three adversarial rounds and the Ingestor's vision
// and reasoning calls pick providers by name, never by SDK type.
package llm

import "context"

// ImagePart is one image attachment sent alongside a prompt.
type ImagePart struct {
	Bytes    []byte
	MIMEType string // e.g. "image/png", "image/jpeg", "image/bmp", "image/tiff"
}

// Options configures a single generate_json call.
type Options struct {
	Temperature    float32
	MaxTokens      int32
	ResponseJSON   bool // enforce response_mime = application/json
	SafetyOff      bool // disable safety categories for engineering terms
	TimeoutSeconds int
}

// Provider is the generic RPC surface every model tier (vision,
// reasoning, adversarial A/B) implements identically, per spec.md §9
// "Provider SDK coupling".
type Provider interface {
	// GenerateJSON sends image parts plus a prompt and returns the raw
	// text response. Callers are responsible for parsing/repairing it.
	GenerateJSON(ctx context.Context, images []ImagePart, prompt string, opts Options) (string, error)
}

// Name identifies a configured provider instance for logging and for
// error attribution, matching pogo's "which model/session" framing.
type Name string

const (
	NameVision       Name = "vision"
	NameReasoning    Name = "reasoning"
	NameAdversarialA Name = "adversarial_a"
	NameAdversarialB Name = "adversarial_b"
)
