// Package pipeline drives a scheduling run through its four stages: plan,
// execute, review, curate. Each stage may consult the advisory oracle, but
// every oracle interaction has a deterministic local fallback, so a run
// always terminates with a well-formed response regardless of oracle
// availability or output quality.
package pipeline

// RunState tracks where a scheduling run is in its lifecycle.
type RunState string

const (
	// StatePlanned means an execution plan exists.
	StatePlanned RunState = "planned"

	// StateExecuting means plan steps are being executed.
	StateExecuting RunState = "executing"

	// StateReviewed means the quality review has completed.
	StateReviewed RunState = "reviewed"

	// StateCurated means the final response has been assembled.
	StateCurated RunState = "curated"

	// StateFailed means the run hit a fatal error and produced no
	// schedule.
	StateFailed RunState = "failed"
)

// ToolCall records one executed plan step for run metadata.
type ToolCall struct {
	Step int    `json:"step"`
	Tool string `json:"tool"`
	OK   bool   `json:"ok"`
}

// run is the accumulator threaded through one scheduling run.
type run struct {
	id       string
	state    RunState
	degraded []string // stages that fell back to deterministic behavior

	toolCalls     []ToolCall
	stepsExecuted int
	skippedSteps  []string
}

// markDegraded records that a stage fell back. Duplicate stage names are
// collapsed.
func (r *run) markDegraded(stage string) {
	for _, s := range r.degraded {
		if s == stage {
			return
		}
	}
	r.degraded = append(r.degraded, stage)
}
