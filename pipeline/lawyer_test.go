package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/c360studio/rosterflow/laws"
	"github.com/c360studio/rosterflow/schedule"
)

func TestValidate_BaselineOnlyWithoutOracle(t *testing.T) {
	req := basicRequest()
	assignments := []schedule.Assignment{
		{TaskID: 1, EmployeeID: 1, Confidence: 0.6},
		{TaskID: 1, EmployeeID: 99, Confidence: 0.6}, // unknown employee
	}

	result, degraded := NewLawyer(laws.NewRegistry(), nil, nil).Validate(context.Background(), req, assignments)
	if degraded {
		t.Error("degraded = true, want false with no oracle configured")
	}
	if result.IsValid {
		t.Error("IsValid = true, want false with an unknown employee reference")
	}
	if len(result.Violations) == 0 {
		t.Error("Violations empty, want the unknown employee reported")
	}
}

func TestValidate_LawWarningsAppended(t *testing.T) {
	req := basicRequest()
	req.Country = "US"

	result, _ := NewLawyer(laws.NewRegistry(), nil, nil).Validate(context.Background(), req, nil)
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(strings.ToLower(w), "vacation") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a US vacation-mandate note", result.Warnings)
	}
}

func TestValidate_OracleCannotFlipVerdict(t *testing.T) {
	oracle := newMockOracle(map[string]mockReply{
		"validation": {content: `{
			"is_valid": false,
			"violations": ["employee 1 is overworked"],
			"warnings": ["consider more rest"],
			"suggestions": ["swap shifts"]
		}`},
	})

	req := basicRequest()
	assignments := []schedule.Assignment{{TaskID: 1, EmployeeID: 1, Confidence: 0.6}}

	result, degraded := NewLawyer(laws.NewRegistry(), oracle, nil).Validate(context.Background(), req, assignments)
	if degraded {
		t.Error("degraded = true, want false for a parsed advisory result")
	}
	if !result.IsValid {
		t.Error("IsValid = false, oracle must not flip a mechanically valid schedule")
	}
	if len(result.Violations) != 0 {
		t.Errorf("Violations = %v, want none from the oracle", result.Violations)
	}

	var advisory, warning bool
	for _, w := range result.Warnings {
		if w == "advisory: employee 1 is overworked" {
			advisory = true
		}
		if w == "consider more rest" {
			warning = true
		}
	}
	if !advisory || !warning {
		t.Errorf("Warnings = %v, want the oracle violation demoted and its warning kept", result.Warnings)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != "swap shifts" {
		t.Errorf("Suggestions = %v, want the oracle suggestion", result.Suggestions)
	}
}

func TestValidate_OracleFailureKeepsBaseline(t *testing.T) {
	tests := []struct {
		name  string
		reply mockReply
	}{
		{"call error", mockReply{err: errors.New("boom")}},
		{"no json", mockReply{content: "all good"}},
		{"bad json", mockReply{content: `{"is_valid": "maybe"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := newMockOracle(map[string]mockReply{"validation": tt.reply})
			req := basicRequest()
			assignments := []schedule.Assignment{{TaskID: 1, EmployeeID: 1, Confidence: 0.6}}

			result, degraded := NewLawyer(laws.NewRegistry(), oracle, nil).Validate(context.Background(), req, assignments)
			if !degraded {
				t.Error("degraded = false, want true after an advisory failure")
			}
			if !result.IsValid {
				t.Error("IsValid = false, want the mechanical verdict to stand")
			}
		})
	}
}
