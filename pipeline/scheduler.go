package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

// SchedulerStage collects advisory assignment suggestions for the
// allocation engine. Its output is untrusted: the engine re-verifies every
// suggestion against eligibility rules, so this stage only has to drop
// entries that are structurally unusable.
type SchedulerStage struct {
	oracle Completer
	logger *slog.Logger
}

// NewSchedulerStage creates the scheduling stage. oracle may be nil.
func NewSchedulerStage(oracle Completer, logger *slog.Logger) *SchedulerStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerStage{oracle: oracle, logger: logger}
}

// Suggest asks the oracle for assignment suggestions. validation, when
// non-nil, carries violations from an earlier compliance check so the
// oracle can avoid repeating them. On any failure it returns no
// suggestions and degraded=true; the engine's fairness fill covers the
// rest.
func (s *SchedulerStage) Suggest(ctx context.Context, req *schedule.Request, validation *schedule.ValidationResult) (suggestions []schedule.Suggestion, degraded bool) {
	if s.oracle == nil {
		return nil, false
	}

	resp, err := s.oracle.Complete(ctx, llm.Request{
		Capability:  "scheduling",
		Messages:    schedulingMessages(req, validation),
		Temperature: &deterministicTemp,
	})
	if err != nil {
		s.logger.Warn("Scheduling oracle failed, allocating without suggestions", "error", err)
		return nil, true
	}

	suggestions = parseSuggestions(resp.Content)
	if suggestions == nil {
		s.logger.Warn("Scheduling response had no usable suggestions")
		return nil, true
	}
	return suggestions, false
}

// suggestionWire tolerates both a bare array and an object wrapper.
type suggestionWire struct {
	Assignments []schedule.Suggestion `json:"assignments"`
}

// parseSuggestions extracts suggestions from oracle output. Accepts either
// a bare JSON array or {"assignments": [...]}. Entries without both a task
// and an employee id are dropped. Returns nil when nothing parses.
func parseSuggestions(content string) []schedule.Suggestion {
	raw := llm.ExtractJSONValue(content)
	if raw == "" {
		return nil
	}

	var list []schedule.Suggestion
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		var wrapped suggestionWire
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil
		}
		list = wrapped.Assignments
	}
	if list == nil {
		return nil
	}

	valid := make([]schedule.Suggestion, 0, len(list))
	for _, s := range list {
		if s.TaskID == 0 && s.EmployeeID == 0 {
			continue
		}
		valid = append(valid, s)
	}
	return valid
}
