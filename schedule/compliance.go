package schedule

import (
	"fmt"
	"sort"
)

// Checker verifies a finished assignment list against the hard scheduling
// rules. Check never returns an error: every problem it finds, including
// structurally broken task definitions, is reported inside the
// ValidationResult so the pipeline always has a verdict to act on.
type Checker struct{}

// NewChecker returns a Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check validates assignments against tasks and employees.
//
// Violations (schedule invalid): unknown task or employee references,
// duplicate assignment of an employee to a task, missing certifications,
// overlapping commitments, vacation exclusivity breaks, unsatisfiable task
// definitions, overstaffed tasks, and, when constraints mark capacity as
// hard, understaffed tasks.
//
// Warnings (schedule valid but imperfect): understaffed tasks under soft
// capacity.
func (c *Checker) Check(assignments []Assignment, tasks []Task, employees []Employee, constraints Constraints) ValidationResult {
	result := ValidationResult{
		IsValid:     true,
		Violations:  []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}
	violate := func(format string, args ...any) {
		result.Violations = append(result.Violations, fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...any) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
	}

	taskByID := make(map[int]Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.TaskID] = t
	}
	empByID := make(map[int]Employee, len(employees))
	for _, e := range employees {
		empByID[e.EmployeeID] = e
	}

	type key struct{ task, emp int }
	seen := make(map[key]bool, len(assignments))
	perEmployee := make(map[int][]Task)
	assigned := make(map[int]int, len(tasks))

	for _, a := range assignments {
		t, okT := taskByID[a.TaskID]
		if !okT {
			violate("assignment references unknown task %d", a.TaskID)
			continue
		}
		emp, okE := empByID[a.EmployeeID]
		if !okE {
			violate("assignment on task %d references unknown employee %d", a.TaskID, a.EmployeeID)
			continue
		}
		k := key{a.TaskID, a.EmployeeID}
		if seen[k] {
			violate("employee %d assigned to task %d more than once", a.EmployeeID, a.TaskID)
			continue
		}
		seen[k] = true
		assigned[a.TaskID]++

		if !emp.HasCertifications(t) {
			violate("employee %d lacks certifications required by task %d", a.EmployeeID, a.TaskID)
		}
		perEmployee[a.EmployeeID] = append(perEmployee[a.EmployeeID], t)
	}

	for empID, committed := range perEmployee {
		sort.Slice(committed, func(i, j int) bool {
			return committed[i].Start.Before(committed[j].Start)
		})
		vacations := 0
		for _, t := range committed {
			if t.IsVacation() {
				vacations++
			}
		}
		if vacations > 0 && len(committed) > vacations {
			violate("employee %d has both vacation and work assignments", empID)
		}
		for i := 1; i < len(committed); i++ {
			prev, cur := committed[i-1], committed[i]
			if cur.Start.Before(prev.End) {
				violate("employee %d has overlapping assignments on tasks %d and %d",
					empID, prev.TaskID, cur.TaskID)
			}
		}
	}

	for _, t := range tasks {
		needed, err := NeededStaff(t)
		if err != nil {
			violate("%v", err)
			continue
		}
		got := assigned[t.TaskID]
		switch {
		case got < needed:
			if constraints.CapacityHard {
				violate("task %d understaffed: %d of %d required", t.TaskID, got, needed)
			} else {
				warn("task %d understaffed: %d of %d required", t.TaskID, got, needed)
				result.Suggestions = append(result.Suggestions,
					fmt.Sprintf("add staff certified for task %d or relax its capacity", t.TaskID))
			}
		case got > needed:
			violate("task %d overstaffed: %d assigned, %d required", t.TaskID, got, needed)
		}
	}

	result.IsValid = len(result.Violations) == 0
	return result
}
