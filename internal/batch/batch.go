// Package batch runs the comparison pipeline over many drawing pairs
// discovered under a master directory and a check directory,
// grounded on the teacher's batch package worker-pool shape.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MeKo-Tech/drawcheck/internal/metrics"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/pipeline"
)

// Runner is the subset of *pipeline.Pipeline a batch run depends on.
type Runner interface {
	Run(ctx context.Context, req model.ComparisonRequest) (*model.ComparisonResult, error)
}

// ProcessBatch runs the comparison pipeline over every master/check pair
// discovered under masterDir/checkDir.
func ProcessBatch(ctx context.Context, pl *pipeline.Pipeline, masterDir, checkDir string, config *Config) (*Result, error) {
	pairs, err := discoverPairs(masterDir, checkDir, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover drawing pairs: %w", err)
	}
	if len(pairs) == 0 {
		return nil, errors.New("no drawing pairs found")
	}

	start := time.Now()
	results := runPairsConcurrently(ctx, pl, pairs, config)
	duration := time.Since(start)

	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "error"
		}
		metrics.RecordBatchJob(status)
	}

	return &Result{
		Pairs:       results,
		Duration:    duration,
		WorkerCount: config.Workers,
	}, nil
}

// runPairsConcurrently compares every pair using a bounded worker pool,
// preserving input order in the returned slice.
func runPairsConcurrently(ctx context.Context, pl Runner, pairs []Pair, config *Config) []PairResult {
	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]PairResult, len(pairs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	var stopOnError sync.Once
	aborted := make(chan struct{})

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-aborted:
					return
				default:
				}

				pair := pairs[i]
				res, err := pl.Run(ctx, model.ComparisonRequest{
					MasterPath: pair.MasterPath,
					CheckPath:  pair.CheckPath,
					Options:    config.Options,
				})
				results[i] = PairResult{MasterPath: pair.MasterPath, CheckPath: pair.CheckPath, Result: res, Err: err}

				if err != nil && !config.ContinueOnError {
					stopOnError.Do(func() { close(aborted) })
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range pairs {
			select {
			case jobs <- i:
			case <-aborted:
				return
			}
		}
	}()

	wg.Wait()
	return results
}
