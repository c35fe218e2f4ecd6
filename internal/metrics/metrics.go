// Package metrics exposes prometheus counters and histograms for the
// comparison pipeline, grounded on the teacher's internal/server
// package-level promauto pattern but repointed at pipeline stages
// instead of HTTP handlers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageDuration records how long each pipeline stage (loader, ocr,
	// ingestor, comparator, reviewer) takes per run, matching the stage
	// names the EventSink already publishes.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drawcheck_stage_duration_seconds",
			Help:    "Duration of a pipeline stage in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	// StageErrorsTotal counts stage failures, regardless of whether the
	// pipeline ultimately treats them as fatal.
	StageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawcheck_stage_errors_total",
			Help: "Total number of pipeline stage errors",
		},
		[]string{"stage"},
	)

	// ComparisonsTotal counts completed comparison runs by final status
	// (model.Summary.Status: the pipeline records "ok" or "error").
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawcheck_comparisons_total",
			Help: "Total number of completed drawing comparisons",
		},
		[]string{"status"},
	)

	// LLMCallsTotal counts vision/reasoning LLM calls by outcome.
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawcheck_llm_calls_total",
			Help: "Total number of LLM provider calls",
		},
		[]string{"outcome"}, // success, rate_limited, error
	)

	// LLMRetriesTotal counts rate-limit retry attempts made by
	// GenerateJSONWithRetry, one increment per attempt beyond the first.
	LLMRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drawcheck_llm_retries_total",
			Help: "Total number of LLM rate-limit retry attempts",
		},
	)

	// LLMCallDuration records vision/reasoning LLM call latency.
	LLMCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drawcheck_llm_call_duration_seconds",
			Help:    "Duration of an LLM provider call in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	// OCRRegionsDetected records how many text regions an OCR engine
	// returns per page, mirroring the teacher's ocr_regions_detected
	// histogram.
	OCRRegionsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drawcheck_ocr_regions_detected",
			Help:    "Number of text regions detected per drawing",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// DedupRemovedTotal counts findings removed by each of the three
	// Adversarial Reviewer dedup passes (spec.md §4.5), by category.
	DedupRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawcheck_dedup_removed_total",
			Help: "Total number of review findings removed by deduplication",
		},
		[]string{"category"}, // missing_dimension, missing_tolerance, modified_value
	)

	// BatchJobsTotal counts batch drawing-pair runs by outcome.
	BatchJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawcheck_batch_jobs_total",
			Help: "Total number of batch comparison jobs",
		},
		[]string{"status"},
	)
)

// ObserveStage records a stage's wall-clock duration. Callers typically
// defer this with a captured start time:
//
//	start := time.Now()
//	defer func() { metrics.ObserveStage("comparator", start) }()
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordStageError increments the error counter for a stage.
func RecordStageError(stage string) {
	StageErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordComparison increments the comparisons counter for a final
// status string (a model.Summary.Status value).
func RecordComparison(status string) {
	ComparisonsTotal.WithLabelValues(status).Inc()
}

// RecordLLMCall increments the LLM call counter for an outcome and
// observes its duration.
func RecordLLMCall(outcome string, start time.Time) {
	LLMCallsTotal.WithLabelValues(outcome).Inc()
	LLMCallDuration.Observe(time.Since(start).Seconds())
}

// RecordLLMRetry increments the retry counter. Called once per retried
// attempt, not once per call.
func RecordLLMRetry() {
	LLMRetriesTotal.Inc()
}

// RecordOCRRegions observes how many text regions an OCR pass returned.
func RecordOCRRegions(count int) {
	OCRRegionsDetected.Observe(float64(count))
}

// RecordDedupRemoved increments the dedup counter for a finding
// category by the number of findings a pass removed.
func RecordDedupRemoved(category string, removed int) {
	if removed <= 0 {
		return
	}
	DedupRemovedTotal.WithLabelValues(category).Add(float64(removed))
}

// RecordBatchJob increments the batch job counter for a final status.
func RecordBatchJob(status string) {
	BatchJobsTotal.WithLabelValues(status).Inc()
}
