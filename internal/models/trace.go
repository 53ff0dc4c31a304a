package models

import "time"

// StageStatus is the outcome of one pipeline stage.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageWarning StageStatus = "warning"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
)

// StageError is one error recorded against a stage. Recoverable errors were
// absorbed (schema defects, refinement fallback); non-recoverable ones
// aborted the pipeline.
type StageError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// Stage error codes.
const (
	CodeCaptureFailed    = "CAPTURE_FAILED"
	CodeAnalysisFailed   = "ANALYSIS_FAILED"
	CodeEvaluationFailed = "EVALUATION_FAILED"
	CodeRefinementFailed = "REFINEMENT_FAILED"
	CodeSchemaViolation  = "SCHEMA_VIOLATION"
	CodePersistFailed    = "PERSIST_FAILED"
)

// Artifact names one output produced by a stage.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// StageMetrics records model usage for stages that performed a model call.
type StageMetrics struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	ModelCalls   int `json:"modelCalls"`
}

// StageResult is the per-stage record accumulated into the ExecutionTrace.
type StageResult struct {
	Stage     string        `json:"stage"`
	Status    StageStatus   `json:"status"`
	Duration  time.Duration `json:"duration"`
	Artifacts []Artifact    `json:"artifacts,omitempty"`
	Logs      []string      `json:"logs,omitempty"`
	Errors    []StageError  `json:"errors,omitempty"`
	Metrics   *StageMetrics `json:"metrics,omitempty"`
}

// Per-token rates used for cost estimation, in USD. Input and output tokens
// are priced separately.
const (
	InputTokenRateUSD  = 1.25e-6
	OutputTokenRateUSD = 5.0e-6
)

// TraceSummary aggregates the whole run.
type TraceSummary struct {
	TotalDuration     time.Duration `json:"totalDuration"`
	TotalInputTokens  int           `json:"totalInputTokens"`
	TotalOutputTokens int           `json:"totalOutputTokens"`
	TotalTokens       int           `json:"totalTokens"`
	EstimatedCostUSD  float64       `json:"estimatedCostUsd"`
	Warnings          []string      `json:"warnings,omitempty"`
}

// ExecutionTrace is the append-only record of one extraction run.
type ExecutionTrace struct {
	SessionID  string        `json:"sessionId"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Stages     []StageResult `json:"stages"`
	Summary    TraceSummary  `json:"summary"`
}

// Append records one stage result in stage order.
func (t *ExecutionTrace) Append(result StageResult) {
	t.Stages = append(t.Stages, result)
}

// Summarize computes the summary from the accumulated stages. Total tokens
// sum input and output across every stage that performed a model call; the
// cost estimate applies the distinct input/output per-token rates. Stage
// warning logs of non-success stages are collected into the summary.
func (t *ExecutionTrace) Summarize() {
	s := TraceSummary{TotalDuration: t.FinishedAt.Sub(t.StartedAt)}
	for _, stage := range t.Stages {
		if stage.Metrics != nil {
			s.TotalInputTokens += stage.Metrics.InputTokens
			s.TotalOutputTokens += stage.Metrics.OutputTokens
		}
		if stage.Status == StageWarning {
			s.Warnings = append(s.Warnings, stage.Logs...)
		}
	}
	s.TotalTokens = s.TotalInputTokens + s.TotalOutputTokens
	s.EstimatedCostUSD = float64(s.TotalInputTokens)*InputTokenRateUSD +
		float64(s.TotalOutputTokens)*OutputTokenRateUSD
	t.Summary = s
}
