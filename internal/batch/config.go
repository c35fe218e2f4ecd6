package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// Config holds all configuration for a batch of drawing-pair
// comparisons, grounded on the teacher's batch.Config shape but
// repointed from directory-of-images OCR settings onto
// directory-of-drawing-pairs comparison settings.
type Config struct {
	// Options applied to every comparison run in the batch.
	Options model.ComparisonOptions

	// Workers is the number of drawing pairs compared concurrently.
	Workers int

	// ContinueOnError keeps processing remaining pairs after one pair's
	// comparison fails, rather than aborting the whole batch.
	ContinueOnError bool

	Format     string
	OutputFile string
	OutputDir  string

	// File discovery settings: pairs are discovered by matching a
	// master file against a check file sharing the same relative path
	// (after stripping the file extension), mirroring the
	// teacher's recursive-directory-walk discovery shape.
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	ShowProgress bool
	Quiet        bool
	ShowStats    bool
}

// PairResult is one drawing pair's outcome within a batch run.
type PairResult struct {
	MasterPath string
	CheckPath  string
	Result     *model.ComparisonResult
	Err        error
}

// Result holds the result of a batch comparison run.
type Result struct {
	Pairs       []PairResult
	Duration    time.Duration
	WorkerCount int
}

// FormatResults formats the batch results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Pairs, format)
}

// SaveResults saves the formatted results to a file or stdout.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(os.Stdout, output)
	}

	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}

	failed := 0
	for _, p := range r.Pairs {
		if p.Err != nil {
			failed++
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nBatch Statistics:\n")
	_, _ = fmt.Fprintf(os.Stdout, "  Total pairs: %d\n", len(r.Pairs))
	_, _ = fmt.Fprintf(os.Stdout, "  Succeeded: %d\n", len(r.Pairs)-failed)
	_, _ = fmt.Fprintf(os.Stdout, "  Failed: %d\n", failed)
	_, _ = fmt.Fprintf(os.Stdout, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(os.Stdout, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if len(r.Pairs) > 0 {
		_, _ = fmt.Fprintf(os.Stdout, "  Avg per pair: %v\n", (r.Duration / time.Duration(len(r.Pairs))).Round(time.Millisecond))
	}
}
