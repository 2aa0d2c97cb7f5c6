package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/c360studio/rosterflow/laws"
	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

// Lawyer runs compliance validation. The mechanical checker and the
// labor-law registry produce the authoritative verdict; the oracle may
// only append advisory warnings and suggestions on top, never change
// whether the schedule is valid.
type Lawyer struct {
	checker *schedule.Checker
	rules   *laws.Registry
	oracle  Completer
	logger  *slog.Logger
}

// NewLawyer creates the validation stage. oracle may be nil to skip the
// advisory augmentation.
func NewLawyer(rules *laws.Registry, oracle Completer, logger *slog.Logger) *Lawyer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lawyer{
		checker: schedule.NewChecker(),
		rules:   rules,
		oracle:  oracle,
		logger:  logger,
	}
}

// Validate checks assignments against the hard rules and the request
// country's labor laws, then optionally augments the result with oracle
// warnings. degraded reports an advisory failure; the verdict itself is
// never degraded because it never depends on the oracle.
func (l *Lawyer) Validate(ctx context.Context, req *schedule.Request, assignments []schedule.Assignment) (schedule.ValidationResult, bool) {
	result := l.checker.Check(assignments, req.Tasks, req.Employees, req.Constraints)
	if l.rules != nil {
		result.Warnings = append(result.Warnings, l.rules.ScheduleWarnings(req.Country)...)
	}

	if l.oracle == nil {
		return result, false
	}

	resp, err := l.oracle.Complete(ctx, llm.Request{
		Capability:  "validation",
		Messages:    validationMessages(req, assignments, result),
		Temperature: &deterministicTemp,
	})
	if err != nil {
		l.logger.Warn("Validation oracle failed, keeping mechanical verdict", "error", err)
		return result, true
	}

	raw := llm.ExtractJSON(resp.Content)
	if raw == "" {
		l.logger.Warn("Validation response had no JSON, keeping mechanical verdict")
		return result, true
	}

	var advisory schedule.ValidationResult
	if err := json.Unmarshal([]byte(raw), &advisory); err != nil {
		l.logger.Warn("Validation response did not parse, keeping mechanical verdict", "error", err)
		return result, true
	}

	// Advisory findings are appended, never authoritative. Anything the
	// oracle calls a violation lands in warnings: the mechanical check
	// owns is_valid.
	result.Warnings = append(result.Warnings, advisory.Warnings...)
	for _, v := range advisory.Violations {
		result.Warnings = append(result.Warnings, fmt.Sprintf("advisory: %s", v))
	}
	result.Suggestions = append(result.Suggestions, advisory.Suggestions...)

	return result, false
}
