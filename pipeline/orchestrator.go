package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360studio/rosterflow/laws"
	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

const (
	// minCuratedConfidence is the confidence floor applied to assignments
	// when the review scores the schedule below lowQualityThreshold.
	minCuratedConfidence = 0.5

	// lowQualityThreshold is the review score below which curation starts
	// dropping low-confidence assignments.
	lowQualityThreshold = 0.7
)

// Orchestrator runs the full scheduling pipeline: plan, execute the plan's
// tool steps, review, then curate the response.
type Orchestrator struct {
	planner   *Planner
	scheduler *SchedulerStage
	lawyer    *Lawyer
	reviewer  *Reviewer
	engine    *schedule.Engine
	logger    *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*orchestratorConfig)

type orchestratorConfig struct {
	logger         *slog.Logger
	vacationPolicy schedule.VacationPolicy
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(c *orchestratorConfig) { c.logger = logger }
}

// WithVacationPolicy sets the allocation engine's unsuggested-vacation
// behavior.
func WithVacationPolicy(p schedule.VacationPolicy) OrchestratorOption {
	return func(c *orchestratorConfig) { c.vacationPolicy = p }
}

// NewOrchestrator wires the pipeline stages. oracle may be nil for a fully
// deterministic pipeline. rules may be nil to skip labor-law gating.
func NewOrchestrator(oracle Completer, rules *laws.Registry, opts ...OrchestratorOption) *Orchestrator {
	cfg := orchestratorConfig{
		logger:         slog.Default(),
		vacationPolicy: schedule.VacationPolicyNone,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	engineOpts := []schedule.EngineOption{
		schedule.WithVacationPolicy(cfg.vacationPolicy),
	}
	if rules != nil {
		engineOpts = append(engineOpts, schedule.WithVacationGate(rules.CanAssignVacation))
	}

	return &Orchestrator{
		planner:   NewPlanner(oracle, cfg.logger),
		scheduler: NewSchedulerStage(oracle, cfg.logger),
		lawyer:    NewLawyer(rules, oracle, cfg.logger),
		reviewer:  NewReviewer(oracle, cfg.logger),
		engine:    schedule.NewEngine(engineOpts...),
		logger:    cfg.logger,
	}
}

// Run takes a scheduling request through the whole pipeline. It returns an
// error only for a malformed request or an unsatisfiable task definition;
// every advisory failure degrades to a deterministic path instead.
func (o *Orchestrator) Run(ctx context.Context, req *schedule.Request) (*schedule.Response, error) {
	if err := schedule.ValidateRequest(req); err != nil {
		return nil, err
	}

	r := &run{id: uuid.NewString(), state: StatePlanned}
	ctx = llm.WithTraceContext(ctx, llm.TraceContext{RunID: r.id})
	o.logger.Info("Scheduling run started", "run_id", r.id,
		"employees", len(req.Employees), "tasks", len(req.Tasks))

	plan, degraded, skipped := o.planner.Plan(ctx, req)
	if degraded {
		r.markDegraded("planning")
	}
	r.skippedSteps = append(r.skippedSteps, skipped...)

	r.state = StateExecuting

	var (
		assignments []schedule.Assignment
		validation  schedule.ValidationResult
		// validationCurrent reports whether validation reflects the
		// final assignment list.
		validationCurrent bool
	)

	for _, step := range plan.Steps {
		switch step.Tool {
		case schedule.ToolLawyer:
			var deg bool
			validation, deg = o.lawyer.Validate(ctx, req, assignments)
			validationCurrent = true
			if deg {
				r.markDegraded("validation")
			}
			r.toolCalls = append(r.toolCalls, ToolCall{Step: step.StepNumber, Tool: step.Tool, OK: !deg})

		case schedule.ToolScheduler:
			suggestions, deg := o.scheduler.Suggest(ctx, req, validationForFeedback(validation, validationCurrent))
			if deg {
				r.markDegraded("scheduling")
			}

			allocated, err := o.engine.Allocate(req.Tasks, req.Employees, suggestions)
			if err != nil {
				r.state = StateFailed
				o.logger.Error("Allocation failed", "run_id", r.id, "error", err)
				return nil, fmt.Errorf("run %s: %w", r.id, err)
			}
			assignments = allocated
			validationCurrent = false
			r.toolCalls = append(r.toolCalls, ToolCall{Step: step.StepNumber, Tool: step.Tool, OK: !deg})
		}
		r.stepsExecuted++
	}

	// The response always carries a compliance verdict for the final
	// assignment list, whatever the plan looked like.
	if !validationCurrent {
		var deg bool
		validation, deg = o.lawyer.Validate(ctx, req, assignments)
		if deg {
			r.markDegraded("validation")
		}
		r.toolCalls = append(r.toolCalls, ToolCall{Step: r.stepsExecuted + 1, Tool: schedule.ToolLawyer, OK: !deg})
	}

	review, degraded := o.reviewer.Review(ctx, req, assignments, validation, r.toolCalls)
	if degraded {
		r.markDegraded("review")
	}
	r.state = StateReviewed

	resp := o.curate(r, plan, assignments, validation, review)
	r.state = StateCurated
	o.logger.Info("Scheduling run finished", "run_id", r.id,
		"assignments", len(resp.Assignments), "success", resp.Success,
		"quality_score", review.QualityScore, "degraded", r.degraded)
	return resp, nil
}

// validationForFeedback passes the compliance result to the scheduling
// stage only when it is current, so the oracle never sees stale violations.
func validationForFeedback(v schedule.ValidationResult, current bool) *schedule.ValidationResult {
	if !current {
		return nil
	}
	return &v
}

// curate assembles the final response. When the review scored the schedule
// below the quality threshold, assignments under the confidence floor are
// dropped.
func (o *Orchestrator) curate(r *run, plan schedule.Plan, assignments []schedule.Assignment, validation schedule.ValidationResult, review schedule.ReviewResult) *schedule.Response {
	curated := assignments
	if review.QualityScore < lowQualityThreshold {
		curated = make([]schedule.Assignment, 0, len(assignments))
		for _, a := range assignments {
			if a.Confidence < minCuratedConfidence {
				o.logger.Debug("Dropping low-confidence assignment",
					"run_id", r.id, "task_id", a.TaskID, "employee_id", a.EmployeeID,
					"confidence", a.Confidence)
				continue
			}
			curated = append(curated, a)
		}
	}

	warnings := append([]string{}, validation.Warnings...)
	for _, stage := range r.degraded {
		warnings = append(warnings, fmt.Sprintf("%s stage fell back to deterministic behavior", stage))
	}

	metadata := map[string]any{
		"run_id":               r.id,
		"strategy":             plan.Strategy,
		"estimated_complexity": plan.EstimatedComplexity,
		"quality_score":        review.QualityScore,
		"review_approved":      review.Approved,
		"steps_executed":       r.stepsExecuted,
		"tool_calls":           r.toolCalls,
	}
	if len(validation.Violations) > 0 {
		metadata["violations"] = validation.Violations
	}
	if len(r.degraded) > 0 {
		metadata["degraded"] = true
		metadata["degraded_stages"] = r.degraded
	}
	if len(r.skippedSteps) > 0 {
		metadata["skipped_steps"] = r.skippedSteps
	}

	return &schedule.Response{
		Assignments: curated,
		Metadata:    metadata,
		Warnings:    warnings,
		Success:     review.Approved && len(curated) > 0,
	}
}
