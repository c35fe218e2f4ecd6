package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/drawcheck/internal/compare"
	"github.com/MeKo-Tech/drawcheck/internal/metrics"
	"github.com/MeKo-Tech/drawcheck/internal/model"
	"github.com/MeKo-Tech/drawcheck/internal/review"
)

// Run executes the full comparison pipeline over one drawing pair,
// implementing spec.md §6's ComparisonRequest -> ComparisonResult
// contract.
//
// Master and check ingestion run concurrently (spec.md §5: "master and
// check ingestion run concurrently. Their two vision-LLM calls overlap;
// their OCR runs overlap"). When review_mode requests the Adversarial
// Reviewer, it starts alongside ingestion too, since it only depends on
// the raw loaded images, not on either MachineState.
func (p *Pipeline) Run(ctx context.Context, req model.ComparisonRequest) (*model.ComparisonResult, error) {
	opts := req.Options
	if opts == (model.ComparisonOptions{}) {
		opts = model.DefaultComparisonOptions()
	}

	requestID := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.TotalTimeout)
	defer cancel()

	var log []model.LogEntry
	logf := func(stage, kind, msg string) {
		log = append(log, model.LogEntry{Stage: stage, Kind: kind, Message: msg})
		p.sink.Publish(stage, kind, map[string]any{"message": msg})
		if kind == "error" {
			metrics.RecordStageError(stage)
		}
	}

	loaderStart := time.Now()
	masterImg, err := p.Loader.Load(req.MasterPath)
	if err != nil {
		logf("loader", "error", err.Error())
		return nil, fmt.Errorf("load master: %w", err)
	}
	checkImg, err := p.Loader.Load(req.CheckPath)
	if err != nil {
		logf("loader", "error", err.Error())
		return nil, fmt.Errorf("load check: %w", err)
	}
	metrics.ObserveStage("loader", loaderStart)
	logf("loader", "complete", "master and check images loaded")

	wantReview := opts.ReviewMode == model.ReviewModeAdversarial || opts.ReviewMode == model.ReviewModeBoth

	type ingestOutcome struct {
		state *model.MachineState
		err   error
	}
	masterCh := make(chan ingestOutcome, 1)
	checkCh := make(chan ingestOutcome, 1)
	reviewCh := make(chan *model.ReviewResult, 1)

	ingestStart := time.Now()
	go func() {
		st, err := p.Ingestor.Ingest(ctx, masterImg)
		masterCh <- ingestOutcome{st, err}
	}()
	go func() {
		st, err := p.Ingestor.Ingest(ctx, checkImg)
		checkCh <- ingestOutcome{st, err}
	}()
	if wantReview && p.Reviewer != nil {
		go func() {
			reviewCh <- p.Reviewer.Review(ctx, masterImg, checkImg)
		}()
	}

	masterOut := <-masterCh
	if masterOut.err != nil {
		logf("ingestor", "error", masterOut.err.Error())
		if fatalError(masterOut.err) {
			return nil, fmt.Errorf("ingest master: %w", masterOut.err)
		}
	}
	checkOut := <-checkCh
	if checkOut.err != nil {
		logf("ingestor", "error", checkOut.err.Error())
		if fatalError(checkOut.err) {
			return nil, fmt.Errorf("ingest check: %w", checkOut.err)
		}
	}
	metrics.ObserveStage("ingestor", ingestStart)
	logf("ingestor", "complete", "master and check machine states extracted")

	masterState := *masterOut.state
	checkState := *checkOut.state
	metrics.RecordOCRRegions(len(masterState.Regions))
	metrics.RecordOCRRegions(len(checkState.Regions))

	var result *model.ComparisonResult
	if opts.ReviewMode == model.ReviewModeStructured || opts.ReviewMode == model.ReviewModeBoth {
		comparatorStart := time.Now()
		cmp, err := compare.Compare(ctx, masterState, checkState, p.Matcher)
		if err != nil {
			logf("comparator", "error", err.Error())
			return nil, fmt.Errorf("compare: %w", err)
		}
		metrics.ObserveStage("comparator", comparatorStart)
		logf("comparator", "complete", "structured diff complete")
		masterBalloons, checkBalloons := buildBalloons(cmp.Comparisons)
		result = &model.ComparisonResult{
			RequestID:          requestID,
			MasterMachineState: masterState,
			CheckMachineState:  checkState,
			Comparisons:        cmp.Comparisons,
			MasterBalloonData:  masterBalloons,
			CheckBalloonData:   checkBalloons,
			Summary:            cmp.Summary,
		}
	} else {
		result = &model.ComparisonResult{
			RequestID:          requestID,
			MasterMachineState: masterState,
			CheckMachineState:  checkState,
			Summary:            model.Summary{Status: "ok"},
		}
	}

	if wantReview && p.Reviewer != nil {
		reviewStart := time.Now()
		reviewResult := <-reviewCh
		review.RefineRegions(reviewResult, masterState.Regions, checkState.Regions,
			masterImg.WidthPx, masterImg.HeightPx, checkImg.WidthPx, checkImg.HeightPx)
		review.ScaleRegions(reviewResult, masterImg.WidthPx, masterImg.HeightPx, checkImg.WidthPx, checkImg.HeightPx)
		result.ReviewResult = reviewResult
		metrics.ObserveStage("reviewer", reviewStart)
		logf("reviewer", "complete", "adversarial review complete")
	}

	result.AgentLog = log

	select {
	case <-ctx.Done():
		result.Summary.Status = "error"
		metrics.RecordComparison("error")
		return result, model.NewPipelineError("pipeline", model.ErrPipelineTimeout, errPipelineTimeout)
	default:
	}

	metrics.RecordComparison(result.Summary.Status)

	return result, nil
}

// buildBalloons projects a structured diff's ComparisonItems into the
// master/check Balloon overlays spec.md §6 describes for rendering.
func buildBalloons(items []model.ComparisonItem) (master, check []model.Balloon) {
	master = make([]model.Balloon, 0, len(items))
	check = make([]model.Balloon, 0, len(items))
	for _, it := range items {
		master = append(master, model.Balloon{
			BalloonNumber:  it.BalloonNumber,
			Value:          it.MasterNominal,
			CoordX:         it.MasterCoordX,
			CoordY:         it.MasterCoordY,
			ToleranceClass: it.MasterToleranceClass,
			Nominal:        it.MasterNominal,
			UpperTol:       it.MasterUpperTol,
			LowerTol:       it.MasterLowerTol,
			Status:         it.Status,
		})
		check = append(check, model.Balloon{
			BalloonNumber:  it.BalloonNumber,
			Value:          it.CheckActual,
			CoordX:         it.CheckCoordX,
			CoordY:         it.CheckCoordY,
			ToleranceClass: it.MasterToleranceClass,
			Nominal:        it.MasterNominal,
			UpperTol:       it.MasterUpperTol,
			LowerTol:       it.MasterLowerTol,
			Status:         it.Status,
		})
	}
	return master, check
}
