package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvellis/brandflow/internal/models"
)

// ProgressSink receives one event per stage transition. The orchestrator is
// the single writer; the sink typically appends to the session registry.
type ProgressSink func(event models.ProgressEvent)

// stagePercent is the fixed percent-complete mapping. Percent is derived
// from stage identity, not from internal stage progress.
var stagePercent = map[string]int{
	models.StageSetup:      5,
	models.StageCapture:    25,
	models.StageAnalyze:    50,
	models.StageSynthesize: 75,
	models.StageEvaluate:   90,
	models.StageRefine:     95,
	models.StageFinalize:   100,
	models.StageComplete:   100,
	models.StageErrorEvent: 100,
}

// Orchestrator runs the fixed stage sequence for one extraction request and
// translates stage outcomes into progress events and a final trace. All
// cross-stage data flows through explicit return values accumulated into
// the trace; stages share no mutable state.
type Orchestrator struct {
	capture     CaptureAdapter
	analyzer    AnalysisAdapter
	synthesizer *Synthesizer
	evaluator   EvaluationAdapter
	refiner     *RefinementController
	store       *ResultStore
}

// NewOrchestrator wires the pipeline stages. store may be nil to disable
// finalize-stage persistence.
func NewOrchestrator(capture CaptureAdapter, analyzer AnalysisAdapter, synthesizer *Synthesizer, evaluator EvaluationAdapter, refiner *RefinementController, store *ResultStore) *Orchestrator {
	return &Orchestrator{
		capture:     capture,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		evaluator:   evaluator,
		refiner:     refiner,
		store:       store,
	}
}

// Run executes the pipeline with the configured capture adapter.
func (o *Orchestrator) Run(ctx context.Context, sessionID, url string, adjectives []string, sink ProgressSink) (*models.BrandSpecification, *models.EvaluationResult, *models.ExecutionTrace, error) {
	return o.run(ctx, o.capture, sessionID, url, adjectives, sink)
}

// RunWithCapture executes the pipeline with an alternate capture adapter,
// used for pre-captured bundles.
func (o *Orchestrator) RunWithCapture(ctx context.Context, capture CaptureAdapter, sessionID, url string, adjectives []string, sink ProgressSink) (*models.BrandSpecification, *models.EvaluationResult, *models.ExecutionTrace, error) {
	return o.run(ctx, capture, sessionID, url, adjectives, sink)
}

func (o *Orchestrator) run(ctx context.Context, capture CaptureAdapter, sessionID, url string, adjectives []string, sink ProgressSink) (*models.BrandSpecification, *models.EvaluationResult, *models.ExecutionTrace, error) {
	logCtx := slog.With("sessionId", sessionID, "url", url)
	logCtx.Info("Starting extraction pipeline.")

	trace := &models.ExecutionTrace{SessionID: sessionID, StartedAt: time.Now().UTC()}
	emit(sink, models.StageSetup, fmt.Sprintf("starting extraction for %s", url))

	// --- Capture ---
	start := time.Now()
	captured, err := capture.Capture(ctx, url)
	if err != nil {
		logCtx.Error("Capture failed", "error", err)
		return o.abort(trace, sink, stageFailure(models.StageCapture, start, models.CodeCaptureFailed, err))
	}
	captureResult := models.StageResult{
		Stage:    models.StageCapture,
		Status:   models.StageSuccess,
		Duration: time.Since(start),
		Logs:     []string{fmt.Sprintf("captured %d screenshots", len(captured.Screenshots))},
	}
	for _, shot := range captured.Screenshots {
		captureResult.Artifacts = append(captureResult.Artifacts, models.Artifact{
			Name:        "screenshot-" + shot.Label,
			ContentType: shot.MIMEType,
			SizeBytes:   int64(len(shot.Data)),
		})
	}
	trace.Append(captureResult)
	emit(sink, models.StageCapture, fmt.Sprintf("captured %d screenshots", len(captured.Screenshots)))

	// --- Analyze ---
	start = time.Now()
	raw, metrics, err := o.analyzer.Analyze(ctx, captured, adjectives)
	if err != nil {
		logCtx.Error("Analysis failed", "error", err)
		failure := stageFailure(models.StageAnalyze, start, models.CodeAnalysisFailed, err)
		failure.Metrics = metrics
		return o.abort(trace, sink, failure)
	}
	trace.Append(models.StageResult{
		Stage:    models.StageAnalyze,
		Status:   models.StageSuccess,
		Duration: time.Since(start),
		Metrics:  metrics,
	})
	emit(sink, models.StageAnalyze, "analyzed brand tokens from screenshots")

	// --- Synthesize ---
	start = time.Now()
	spec, warnings, err := o.synthesizer.Synthesize(raw, url, adjectives)
	if err != nil {
		logCtx.Error("Synthesis failed", "error", err)
		return o.abort(trace, sink, stageFailure(models.StageSynthesize, start, models.CodeSchemaViolation, err))
	}
	synthResult := models.StageResult{
		Stage:    models.StageSynthesize,
		Status:   models.StageSuccess,
		Duration: time.Since(start),
		Logs:     warnings,
	}
	if len(warnings) > 0 {
		synthResult.Status = models.StageWarning
	}
	trace.Append(synthResult)
	emit(sink, models.StageSynthesize, fmt.Sprintf("synthesized specification %s", spec.ID))

	// --- Evaluate ---
	start = time.Now()
	eval, metrics, err := o.evaluator.Evaluate(ctx, spec)
	if err != nil {
		logCtx.Error("Evaluation failed", "error", err)
		failure := stageFailure(models.StageEvaluate, start, models.CodeEvaluationFailed, err)
		failure.Metrics = metrics
		return o.abort(trace, sink, failure)
	}
	trace.Append(models.StageResult{
		Stage:    models.StageEvaluate,
		Status:   models.StageSuccess,
		Duration: time.Since(start),
		Metrics:  metrics,
		Logs:     []string{fmt.Sprintf("scored %.2f (%s)", eval.OverallScore, eval.QualityBand)},
	})
	emit(sink, models.StageEvaluate, fmt.Sprintf("evaluated at %.2f (%s)", eval.OverallScore, eval.QualityBand))

	// --- Refine (conditional; never fails the pipeline) ---
	final, refineResult := o.refiner.Run(ctx, spec, eval)
	trace.Append(refineResult)
	switch refineResult.Status {
	case models.StageSkipped:
		emit(sink, models.StageRefine, "refinement skipped")
	case models.StageWarning:
		emit(sink, models.StageRefine, "refinement discarded, keeping original specification")
	default:
		emit(sink, models.StageRefine, "refined specification")
	}

	// --- Finalize ---
	start = time.Now()
	finalizeResult := models.StageResult{
		Stage:    models.StageFinalize,
		Status:   models.StageSuccess,
		Duration: time.Since(start),
	}
	// Summarize before persisting so the record carries the token and cost
	// totals; the summary is recomputed once finalize itself is recorded.
	trace.FinishedAt = time.Now().UTC()
	trace.Summarize()
	if o.store != nil {
		artifacts, persistErrors := o.store.Persist(ctx, sessionID, final, eval, trace, raw)
		finalizeResult.Artifacts = artifacts
		finalizeResult.Errors = persistErrors
		if len(persistErrors) > 0 {
			finalizeResult.Status = models.StageWarning
			for _, pe := range persistErrors {
				finalizeResult.Logs = append(finalizeResult.Logs, pe.Message)
			}
		}
	}
	finalizeResult.Duration = time.Since(start)
	trace.Append(finalizeResult)
	trace.FinishedAt = time.Now().UTC()
	trace.Summarize()
	emit(sink, models.StageFinalize, "finalized extraction")

	emit(sink, models.StageComplete, fmt.Sprintf("extraction complete: specification %s", final.ID))
	logCtx.Info("Extraction pipeline complete.",
		"specificationId", final.ID,
		"overallScore", eval.OverallScore,
		"qualityBand", eval.QualityBand,
		"totalTokens", trace.Summary.TotalTokens)
	return final, eval, trace, nil
}

// abort records the failing stage, emits the terminal error event with the
// triggering error's message, and finishes the trace. The remainder of the
// pipeline does not run.
func (o *Orchestrator) abort(trace *models.ExecutionTrace, sink ProgressSink, failure models.StageResult) (*models.BrandSpecification, *models.EvaluationResult, *models.ExecutionTrace, error) {
	trace.Append(failure)
	trace.FinishedAt = time.Now().UTC()
	trace.Summarize()

	message := failure.Stage + " failed"
	if len(failure.Errors) > 0 {
		message = failure.Errors[0].Message
	}
	emit(sink, models.StageErrorEvent, message)
	return nil, nil, trace, fmt.Errorf("%s stage failed: %s", failure.Stage, message)
}

func stageFailure(stage string, start time.Time, code string, err error) models.StageResult {
	return models.StageResult{
		Stage:    stage,
		Status:   models.StageFailed,
		Duration: time.Since(start),
		Errors: []models.StageError{{
			Code:        code,
			Message:     err.Error(),
			Recoverable: false,
		}},
	}
}

// emit publishes one progress event with the stage's fixed percent.
func emit(sink ProgressSink, stage, message string) {
	if sink == nil {
		return
	}
	sink(models.ProgressEvent{
		Stage:           stage,
		Message:         message,
		ProgressPercent: stagePercent[stage],
		Timestamp:       time.Now().UTC(),
	})
}
