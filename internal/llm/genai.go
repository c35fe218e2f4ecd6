package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GenAIProvider implements Provider against Google's Gemini API. One
// instance is constructed per configured model tier (vision, reasoning,
// adversarial_a, adversarial_b) — spec.md §9 "Provider SDK coupling".
type GenAIProvider struct {
	client *genai.Client
	model  string
	name   Name
}

// NewGenAIProvider builds a provider bound to one model identifier.
func NewGenAIProvider(ctx context.Context, apiKey, model string, name Name) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: %s: API key is required", name)
	}
	if model == "" {
		return nil, fmt.Errorf("llm: %s: model identifier is required", name)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llm: %s: create genai client: %w", name, err)
	}
	return &GenAIProvider{client: client, model: model, name: name}, nil
}

// safetyOffCategories lists the categories disabled when Options.SafetyOff
// is set (spec.md §6: "technical-engineering terms trigger false
// positives"). Policy about when to set SafetyOff is the caller's concern.
var safetyOffCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

func (p *GenAIProvider) GenerateJSON(ctx context.Context, images []ImagePart, prompt string, opts Options) (string, error) {
	if opts.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Bytes}})
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxTokens
	}
	if opts.ResponseJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if opts.SafetyOff {
		settings := make([]*genai.SafetySetting, 0, len(safetyOffCategories))
		for _, cat := range safetyOffCategories {
			settings = append(settings, &genai.SafetySetting{Category: cat, Threshold: genai.HarmBlockThresholdBlockNone})
		}
		cfg.SafetySettings = settings
	}

	slog.Debug("llm request", "provider", p.name, "model", p.model, "images", len(images))
	start := time.Now()

	result, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	latency := time.Since(start)
	if err != nil {
		slog.Error("llm request failed", "provider", p.name, "model", p.model, "latency", latency, "error", err)
		return "", classifyGenAIError(err)
	}

	text := extractText(result)
	if text == "" {
		slog.Warn("llm response empty", "provider", p.name, "model", p.model, "latency", latency)
		return "", fmt.Errorf("llm: %s: empty response", p.name)
	}

	slog.Debug("llm response", "provider", p.name, "model", p.model, "latency", latency, "chars", len(text))
	return text, nil
}

// extractText salvages whatever text exists even when the finish reason
// indicates truncation (spec.md §6: "salvage partial text... if any
// exists").
func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	cand := result.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// RateLimitError marks an error as a transient rate-limit condition, the
// only error class retry.go's backoff applies to (spec.md §4.3 Phase A).
type RateLimitError struct {
	Wrapped error
}

func (e *RateLimitError) Error() string { return fmt.Sprintf("rate limited: %v", e.Wrapped) }
func (e *RateLimitError) Unwrap() error { return e.Wrapped }

// IsRateLimit reports whether err (or anything it wraps) is a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// classifyGenAIError wraps quota/429-style genai errors as RateLimitError
// so retry.go can distinguish them from fatal provider errors.
func classifyGenAIError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") {
		return &RateLimitError{Wrapped: err}
	}
	return err
}
