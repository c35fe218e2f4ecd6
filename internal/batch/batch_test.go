package batch

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner is a Runner whose behavior is driven by a callback, used to
// exercise the worker pool without a real pipeline.Pipeline.
type fakeRunner struct {
	run func(ctx context.Context, req model.ComparisonRequest) (*model.ComparisonResult, error)
}

func (f fakeRunner) Run(ctx context.Context, req model.ComparisonRequest) (*model.ComparisonResult, error) {
	return f.run(ctx, req)
}

func TestProcessBatch_NoDrawingPairsFound(t *testing.T) {
	masterDir := testutil.CreateTempDir(t)
	checkDir := testutil.CreateTempDir(t)

	result, err := ProcessBatch(context.Background(), nil, masterDir, checkDir, &Config{Workers: 1, IncludePatterns: []string{"*.pdf"}})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "no drawing pairs found")
}

func TestProcessBatch_DiscoveryFailure(t *testing.T) {
	result, err := ProcessBatch(context.Background(), nil, "/nonexistent/masters", "/nonexistent/checks", &Config{Workers: 1, IncludePatterns: []string{"*.pdf"}})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to discover drawing pairs")
}

func TestRunPairsConcurrently_AllSucceed(t *testing.T) {
	pairs := []Pair{
		{MasterPath: "m1.pdf", CheckPath: "c1.pdf"},
		{MasterPath: "m2.pdf", CheckPath: "c2.pdf"},
		{MasterPath: "m3.pdf", CheckPath: "c3.pdf"},
	}

	runner := fakeRunner{run: func(_ context.Context, req model.ComparisonRequest) (*model.ComparisonResult, error) {
		return &model.ComparisonResult{Summary: model.Summary{Status: "ok"}}, nil
	}}

	results := runPairsConcurrently(context.Background(), runner, pairs, &Config{Workers: 2})
	require.Len(t, results, 3)
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, pairs[i].MasterPath, r.MasterPath)
		assert.Equal(t, "ok", r.Result.Summary.Status)
	}
}

func TestRunPairsConcurrently_ContinueOnError(t *testing.T) {
	pairs := []Pair{
		{MasterPath: "m1.pdf", CheckPath: "c1.pdf"},
		{MasterPath: "m2.pdf", CheckPath: "c2.pdf"},
		{MasterPath: "m3.pdf", CheckPath: "c3.pdf"},
	}

	runner := fakeRunner{run: func(_ context.Context, req model.ComparisonRequest) (*model.ComparisonResult, error) {
		if req.MasterPath == "m2.pdf" {
			return nil, errors.New("ingest failed")
		}
		return &model.ComparisonResult{Summary: model.Summary{Status: "ok"}}, nil
	}}

	results := runPairsConcurrently(context.Background(), runner, pairs, &Config{Workers: 1, ContinueOnError: true})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestRunPairsConcurrently_StopsOnFirstErrorWhenNotContinuing(t *testing.T) {
	pairs := make([]Pair, 20)
	for i := range pairs {
		pairs[i] = Pair{MasterPath: filepath.Base(string(rune('a' + i))), CheckPath: "c.pdf"}
	}

	var calls int32
	runner := fakeRunner{run: func(_ context.Context, _ model.ComparisonRequest) (*model.ComparisonResult, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return nil, errors.New("boom")
		}
		return &model.ComparisonResult{Summary: model.Summary{Status: "ok"}}, nil
	}}

	results := runPairsConcurrently(context.Background(), runner, pairs, &Config{Workers: 1, ContinueOnError: false})

	errCount := 0
	processed := 0
	for _, r := range results {
		if r.Result != nil || r.Err != nil {
			processed++
		}
		if r.Err != nil {
			errCount++
		}
	}
	assert.Less(t, processed, len(pairs), "worker pool should stop before processing every pair")
	assert.Equal(t, 1, errCount)
}

func TestRunPairsConcurrently_DefaultsToOneWorker(t *testing.T) {
	pairs := []Pair{{MasterPath: "m.pdf", CheckPath: "c.pdf"}}
	runner := fakeRunner{run: func(_ context.Context, _ model.ComparisonRequest) (*model.ComparisonResult, error) {
		return &model.ComparisonResult{Summary: model.Summary{Status: "ok"}}, nil
	}}

	results := runPairsConcurrently(context.Background(), runner, pairs, &Config{Workers: 0})
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}
