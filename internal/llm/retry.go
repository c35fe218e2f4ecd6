package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/drawcheck/internal/metrics"
)

// MaxAttempts implements spec.md §4.3 Phase A's retry policy: "up to 5
// attempts, exponential backoff starting at 30s, doubling each attempt,
// on rate-limit errors only".
const MaxAttempts = 5

// InitialBackoff is the starting backoff duration, doubled each
// subsequent attempt. A var (not a const) so tests can shrink it rather
// than block on the real 30s policy value.
var InitialBackoff = 30 * time.Second

// GenerateJSONWithRetry wraps a Provider call with the vision-LLM retry
// policy. Non-rate-limit errors are returned immediately without retry.
func GenerateJSONWithRetry(ctx context.Context, p Provider, images []ImagePart, prompt string, opts Options) (string, error) {
	backoff := InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		callStart := time.Now()
		text, err := p.GenerateJSON(ctx, images, prompt, opts)
		if err == nil {
			metrics.RecordLLMCall("success", callStart)
			return text, nil
		}
		lastErr = err

		if !IsRateLimit(err) {
			metrics.RecordLLMCall("error", callStart)
			return "", err
		}
		metrics.RecordLLMCall("rate_limited", callStart)
		if attempt == MaxAttempts {
			break
		}

		metrics.RecordLLMRetry()
		slog.Warn("llm rate limited, backing off", "attempt", attempt, "backoff", backoff)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return "", fmt.Errorf("llm: exhausted %d attempts: %w", MaxAttempts, lastErr)
}
