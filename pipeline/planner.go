package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

// Completer is the oracle surface the pipeline stages depend on.
// Satisfied by *llm.Client and by mocks in tests. A nil completer means
// the oracle is disabled and every stage uses its deterministic path.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// deterministicTemp pins oracle sampling for reproducible suggestions.
var deterministicTemp = 0.0

// Planner builds the execution plan for a run.
type Planner struct {
	oracle Completer
	logger *slog.Logger
}

// NewPlanner creates a planner. oracle may be nil to always use the fixed
// fallback plan.
func NewPlanner(oracle Completer, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{oracle: oracle, logger: logger}
}

// fallbackPlan is the fixed plan used when the oracle cannot produce a
// usable one: check compliance first, then allocate.
func fallbackPlan() schedule.Plan {
	return schedule.Plan{
		Strategy:            "validate constraints, then allocate by fairness",
		EstimatedComplexity: "low",
		Steps: []schedule.PlanStep{
			{
				StepNumber:  1,
				Description: "Check labor-law and constraint compliance",
				Tool:        schedule.ToolLawyer,
				Parameters:  map[string]any{"scope": "validate_all"},
			},
			{
				StepNumber:  2,
				Description: "Allocate staff to tasks",
				Tool:        schedule.ToolScheduler,
				Parameters:  map[string]any{"optimize_for": "balance"},
			},
		},
	}
}

// Plan asks the oracle for an execution plan, falling back to the fixed
// plan on any failure. The degraded return reports whether the fallback
// was taken despite an enabled oracle. skipped lists plan steps that named
// unknown tools and were dropped.
func (p *Planner) Plan(ctx context.Context, req *schedule.Request) (plan schedule.Plan, degraded bool, skipped []string) {
	if p.oracle == nil {
		return fallbackPlan(), false, nil
	}

	resp, err := p.oracle.Complete(ctx, llm.Request{
		Capability:  "planning",
		Messages:    planningMessages(req),
		Temperature: &deterministicTemp,
	})
	if err != nil {
		p.logger.Warn("Planning oracle failed, using fallback plan", "error", err)
		return fallbackPlan(), true, nil
	}

	raw := llm.ExtractJSON(resp.Content)
	if raw == "" {
		p.logger.Warn("Planning response had no JSON, using fallback plan")
		return fallbackPlan(), true, nil
	}

	var parsed schedule.Plan
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		p.logger.Warn("Planning response did not parse, using fallback plan", "error", err)
		return fallbackPlan(), true, nil
	}

	plan, skipped = sanitizePlan(parsed)
	if len(plan.Steps) == 0 {
		p.logger.Warn("Plan contained no usable steps, using fallback plan", "skipped", skipped)
		return fallbackPlan(), true, skipped
	}
	return plan, false, skipped
}

// sanitizePlan drops steps naming unknown tools. The dropped steps are
// reported, never silently discarded.
func sanitizePlan(plan schedule.Plan) (schedule.Plan, []string) {
	var skipped []string
	steps := make([]schedule.PlanStep, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		switch step.Tool {
		case schedule.ToolLawyer, schedule.ToolScheduler:
			steps = append(steps, step)
		default:
			skipped = append(skipped, step.Tool)
		}
	}
	plan.Steps = steps
	return plan, skipped
}
