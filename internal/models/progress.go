package models

import "time"

// Pipeline stage names, in execution order. StageComplete and
// StageErrorEvent are the terminal event stages, not pipeline stages.
const (
	StageSetup      = "setup"
	StageCapture    = "capture"
	StageAnalyze    = "analyze"
	StageSynthesize = "synthesize"
	StageEvaluate   = "evaluate"
	StageRefine     = "refine"
	StageFinalize   = "finalize"

	StageComplete   = "complete"
	StageErrorEvent = "error"
)

// ProgressEvent is one immutable observation appended to a session's log.
// Percent is derived from stage identity, not from internal stage progress,
// and never decreases within a session.
type ProgressEvent struct {
	Stage           string    `json:"stage"`
	Message         string    `json:"message"`
	ProgressPercent int       `json:"progressPercent"`
	Timestamp       time.Time `json:"timestamp"`
}

// IsTerminal reports whether the event closes its session's log.
func (e ProgressEvent) IsTerminal() bool {
	return e.Stage == StageComplete || e.Stage == StageErrorEvent
}
