package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

// compactJSON renders a value for prompt embedding. Marshal failures can
// only come from exotic values our own types never contain, so the error
// collapses to an empty object.
func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func planningMessages(req *schedule.Request) []llm.Message {
	system := `You are a scheduling planner. Produce an execution plan as a JSON object:
{
  "strategy": "<one line>",
  "estimated_complexity": "low|medium|high",
  "steps": [
    {"step_number": 1, "description": "...", "tool": "lawyer", "parameters": {}},
    {"step_number": 2, "description": "...", "tool": "scheduler", "parameters": {"optimize_for": "balance"}}
  ]
}
Available tools: "lawyer" (compliance check), "scheduler" (assignment allocation).
Respond with JSON only.`

	user := fmt.Sprintf(`Plan a staff scheduling run.
Employees: %s
Tasks: %s
Constraints: %s`,
		compactJSON(req.Employees),
		compactJSON(req.Tasks),
		compactJSON(req.Constraints))

	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

func schedulingMessages(req *schedule.Request, validation *schedule.ValidationResult) []llm.Message {
	system := `You are a staff scheduling assistant. Suggest task assignments as a JSON array:
[{"task_id": 1, "employee_id": 2, "confidence": 0.9}]
Only suggest employees who hold every certification a task requires and are free during its time window.
Category 0 is the vacation slot; suggest it sparingly and never alongside work for the same employee.
Respond with JSON only.`

	var sb strings.Builder
	fmt.Fprintf(&sb, "Employees: %s\nTasks: %s\nConstraints: %s\n",
		compactJSON(req.Employees),
		compactJSON(req.Tasks),
		compactJSON(req.Constraints))

	if validation != nil && len(validation.Violations) > 0 {
		fmt.Fprintf(&sb, "A previous attempt had these violations, avoid repeating them:\n")
		for _, v := range validation.Violations {
			fmt.Fprintf(&sb, "- %s\n", v)
		}
	}

	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: sb.String()},
	}
}

func validationMessages(req *schedule.Request, assignments []schedule.Assignment, baseline schedule.ValidationResult) []llm.Message {
	system := `You are a labor compliance analyst. Review the schedule and respond with a JSON object:
{"is_valid": true, "violations": [], "warnings": [], "suggestions": []}
Focus on rest periods, working-time limits, and fairness concerns the mechanical check might miss.
Respond with JSON only.`

	user := fmt.Sprintf(`Country: %s
Constraints: %s
Assignments: %s
Mechanical check found violations %s and warnings %s.`,
		req.Country,
		compactJSON(req.Constraints),
		compactJSON(assignments),
		compactJSON(baseline.Violations),
		compactJSON(baseline.Warnings))

	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

func reviewMessages(req *schedule.Request, assignments []schedule.Assignment, validation schedule.ValidationResult, toolCalls []ToolCall) []llm.Message {
	system := `You are a schedule quality reviewer. Respond with a JSON object:
{"approved": true, "quality_score": 0.0, "issues": [], "improvements": []}
quality_score is between 0 and 1. Approve unless the schedule is unusable.
Respond with JSON only.`

	coverage := 0.0
	if len(req.Tasks) > 0 {
		covered := make(map[int]bool)
		for _, a := range assignments {
			covered[a.TaskID] = true
		}
		coverage = float64(len(covered)) / float64(len(req.Tasks))
	}

	user := fmt.Sprintf(`Tasks: %d, assignments: %d, task coverage: %.2f
Validation: %s
Tool calls: %s
Assignments: %s`,
		len(req.Tasks),
		len(assignments),
		coverage,
		compactJSON(validation),
		compactJSON(toolCalls),
		compactJSON(assignments))

	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
