package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

// failOpenScore is the quality score attached to fail-open reviews.
const failOpenScore = 0.5

// Reviewer runs the quality review stage. Review failures never block a
// schedule: when the oracle is unreachable or returns garbage, the result
// is approved at a neutral score so the run can finish.
type Reviewer struct {
	oracle Completer
	logger *slog.Logger
}

// NewReviewer creates the review stage. oracle may be nil.
func NewReviewer(oracle Completer, logger *slog.Logger) *Reviewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reviewer{oracle: oracle, logger: logger}
}

// failOpen is the exact result used whenever the review cannot run.
func failOpen() schedule.ReviewResult {
	return schedule.ReviewResult{
		Approved:     true,
		QualityScore: failOpenScore,
		Issues:       []string{},
		Improvements: []string{},
	}
}

// Review asks the oracle to judge the finished schedule. Any failure
// returns the fail-open result with degraded=true.
func (r *Reviewer) Review(ctx context.Context, req *schedule.Request, assignments []schedule.Assignment, validation schedule.ValidationResult, toolCalls []ToolCall) (schedule.ReviewResult, bool) {
	if r.oracle == nil {
		return failOpen(), false
	}

	resp, err := r.oracle.Complete(ctx, llm.Request{
		Capability:  "review",
		Messages:    reviewMessages(req, assignments, validation, toolCalls),
		Temperature: &deterministicTemp,
	})
	if err != nil {
		r.logger.Warn("Review oracle failed, approving fail-open", "error", err)
		return failOpen(), true
	}

	raw := llm.ExtractJSON(resp.Content)
	if raw == "" {
		r.logger.Warn("Review response had no JSON, approving fail-open")
		return failOpen(), true
	}

	var review schedule.ReviewResult
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		r.logger.Warn("Review response did not parse, approving fail-open", "error", err)
		return failOpen(), true
	}

	if review.QualityScore < 0 {
		review.QualityScore = 0
	}
	if review.QualityScore > 1 {
		review.QualityScore = 1
	}
	if review.Issues == nil {
		review.Issues = []string{}
	}
	if review.Improvements == nil {
		review.Improvements = []string{}
	}
	return review, false
}
