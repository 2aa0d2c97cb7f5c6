package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/c360studio/rosterflow/schedule"
)

func TestPlan_NilOracleUsesFallbackWithoutDegrading(t *testing.T) {
	plan, degraded, skipped := NewPlanner(nil, nil).Plan(context.Background(), basicRequest())
	if degraded {
		t.Error("degraded = true, want false with no oracle configured")
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v, want none", skipped)
	}
	if !reflect.DeepEqual(plan, fallbackPlan()) {
		t.Errorf("plan = %+v, want fallback", plan)
	}
}

func TestPlan_OracleErrorFallsBackDegraded(t *testing.T) {
	oracle := newMockOracle(map[string]mockReply{
		"planning": {err: errors.New("boom")},
	})

	plan, degraded, _ := NewPlanner(oracle, nil).Plan(context.Background(), basicRequest())
	if !degraded {
		t.Error("degraded = false, want true after oracle error")
	}
	if !reflect.DeepEqual(plan, fallbackPlan()) {
		t.Errorf("plan = %+v, want fallback", plan)
	}
}

func TestPlan_GarbageResponseFallsBackDegraded(t *testing.T) {
	for _, content := range []string{"no json here", `{"steps": "not a list"}`} {
		oracle := newMockOracle(map[string]mockReply{
			"planning": {content: content},
		})
		_, degraded, _ := NewPlanner(oracle, nil).Plan(context.Background(), basicRequest())
		if !degraded {
			t.Errorf("content %q: degraded = false, want true", content)
		}
	}
}

func TestPlan_ValidPlanAccepted(t *testing.T) {
	oracle := newMockOracle(map[string]mockReply{
		"planning": {content: `{
			"strategy": "lawyer first",
			"estimated_complexity": "medium",
			"steps": [
				{"step_number": 1, "description": "check", "tool": "lawyer", "parameters": {}},
				{"step_number": 2, "description": "assign", "tool": "scheduler", "parameters": {}}
			]
		}`},
	})

	plan, degraded, skipped := NewPlanner(oracle, nil).Plan(context.Background(), basicRequest())
	if degraded {
		t.Error("degraded = true, want false for a valid plan")
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v, want none", skipped)
	}
	if plan.Strategy != "lawyer first" || len(plan.Steps) != 2 {
		t.Errorf("plan = %+v, want the parsed plan", plan)
	}
}

func TestPlan_UnknownToolsSkipped(t *testing.T) {
	oracle := newMockOracle(map[string]mockReply{
		"planning": {content: `{
			"strategy": "s",
			"steps": [
				{"step_number": 1, "tool": "rm -rf"},
				{"step_number": 2, "tool": "scheduler"}
			]
		}`},
	})

	plan, degraded, skipped := NewPlanner(oracle, nil).Plan(context.Background(), basicRequest())
	if degraded {
		t.Error("degraded = true, want false when usable steps remain")
	}
	if !reflect.DeepEqual(skipped, []string{"rm -rf"}) {
		t.Errorf("skipped = %v, want the unknown tool", skipped)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Tool != schedule.ToolScheduler {
		t.Errorf("steps = %+v, want only the scheduler step", plan.Steps)
	}
}

func TestPlan_AllStepsUnknownFallsBackDegraded(t *testing.T) {
	oracle := newMockOracle(map[string]mockReply{
		"planning": {content: `{"strategy": "s", "steps": [{"step_number": 1, "tool": "mystery"}]}`},
	})

	plan, degraded, skipped := NewPlanner(oracle, nil).Plan(context.Background(), basicRequest())
	if !degraded {
		t.Error("degraded = false, want true when no usable steps remain")
	}
	if !reflect.DeepEqual(skipped, []string{"mystery"}) {
		t.Errorf("skipped = %v, want the unknown tool", skipped)
	}
	if !reflect.DeepEqual(plan, fallbackPlan()) {
		t.Errorf("plan = %+v, want fallback", plan)
	}
}
