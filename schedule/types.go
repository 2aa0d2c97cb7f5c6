// Package schedule provides the deterministic core of the rosterflow
// scheduling engine: the domain model, candidate eligibility, fairness
// ranking, capacity derivation, the allocation engine, and the compliance
// checker. Everything in this package is pure and reproducible, so a
// schedule can always be produced and verified locally even when every
// advisory service is down.
package schedule

import (
	"encoding/json"
	"time"
)

// VacationCategory is the reserved task category for the exclusive
// full-day vacation task.
const VacationCategory = 0

// Task is a time-bounded unit of work that employees are assigned to.
// Tasks are immutable once constructed for a scheduling run.
type Task struct {
	TaskID   int `json:"task_id"`
	Category int `json:"category"`

	// CustomerCapacity is the declared demand for the task. Zero means a
	// vacation-style fixed slot where RequiredCapacityPerStaff is the slot
	// count itself.
	CustomerCapacity int `json:"customer_capacity"`

	// RequiredCapacityPerStaff is how much customer capacity one staff
	// member covers.
	RequiredCapacityPerStaff int `json:"required_capacity_per_staff"`

	RequiredCertifications []int `json:"required_certifications"`

	// Start and End bound the half-open interval [Start, End).
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsVacation reports whether the task is the exclusive vacation task.
func (t Task) IsVacation() bool {
	return t.Category == VacationCategory
}

// Overlaps reports whether two half-open task intervals intersect.
func (t Task) Overlaps(other Task) bool {
	return maxTime(t.Start, other.Start).Before(minTime(t.End, other.End))
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Employee is a member of the staff pool. Employees are read-only input
// per scheduling run; the engine never mutates the fairness or workload
// counters. Updating them between runs is an external concern.
type Employee struct {
	EmployeeID int    `json:"employee_id"`
	Name       string `json:"name"`

	// Preferences is an ordered list of task categories, most preferred
	// first. A category absent from the list means "no preference".
	Preferences []int `json:"preferences"`

	Certifications []int `json:"certifications"`

	// Fairness counters over a rolling 60-day window.
	PreviousVacations60Days int `json:"previous_vacations_60_days"`
	ApprovedRequests60Days  int `json:"approved_requests_60_days"`
	DeniedRequests60Days    int `json:"denied_requests_60_days"`

	// Workload counters, advisory input for review and fairness prompts.
	NightsWorked          int `json:"nights_worked,omitempty"`
	WeekendsWorked        int `json:"weekends_worked,omitempty"`
	HolidaysWorked        int `json:"holidays_worked,omitempty"`
	VacationDaysUsed      int `json:"vacation_days_used,omitempty"`
	VacationDaysRemaining int `json:"vacation_days_remaining,omitempty"`
}

// HasCertifications reports whether the employee holds every certification
// the task requires.
func (e Employee) HasCertifications(t Task) bool {
	for _, required := range t.RequiredCertifications {
		found := false
		for _, cert := range e.Certifications {
			if cert == required {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// PreferenceRank returns the index of the category in the employee's
// preference list, or NoPreferenceRank when the category is absent.
func (e Employee) PreferenceRank(category int) int {
	for i, c := range e.Preferences {
		if c == category {
			return i
		}
	}
	return NoPreferenceRank
}

// NoPreferenceRank is the rank assigned to categories the employee has no
// stated preference for. It sorts after any explicit preference.
const NoPreferenceRank = 999

// Assignment binds one employee to one task with a confidence score.
// Confidence expresses how much the engine trusts the decision's source:
// oracle-sourced assignments carry the oracle's confidence, fallback
// assignments a fixed low value.
type Assignment struct {
	TaskID       int     `json:"task_id"`
	EmployeeID   int     `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// BatchAssignment is the batch form of an assignment: one task and its
// ordered set of employees.
type BatchAssignment struct {
	TaskID      int   `json:"task_id"`
	EmployeeIDs []int `json:"employee_ids"`
}

// ValidationResult is the structured verdict of a compliance check.
// Produced fresh per check; never partially mutated.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Violations  []string `json:"violations"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ReviewResult is the outcome of the quality review stage.
type ReviewResult struct {
	Approved     bool     `json:"approved"`
	QualityScore float64  `json:"quality_score"`
	Issues       []string `json:"issues"`
	Improvements []string `json:"improvements"`
}

// PlanStep names one tool invocation in an execution plan.
type PlanStep struct {
	StepNumber  int            `json:"step_number"`
	Description string         `json:"description"`
	Tool        string         `json:"tool"`
	Parameters  map[string]any `json:"parameters"`
}

// Plan is an ordered list of steps produced by the planning stage.
// Strategy and EstimatedComplexity are advisory metadata only.
type Plan struct {
	Strategy            string     `json:"strategy"`
	EstimatedComplexity string     `json:"estimated_complexity"`
	Steps               []PlanStep `json:"steps"`
}

// Tool names recognized in plan steps.
const (
	ToolLawyer    = "lawyer"    // compliance check
	ToolScheduler = "scheduler" // allocation
)

// Request is a scheduling request: the employee pool, the task list, and
// the constraint record. Empty Employees or Tasks is a client error.
type Request struct {
	Employees   []Employee  `json:"employees"`
	Tasks       []Task      `json:"tasks"`
	Constraints Constraints `json:"constraints"`

	// Country selects the labor-law rule record consulted during
	// validation. Empty defaults to "US".
	Country string `json:"country,omitempty"`
}

// Response is the final scheduling result returned to the caller.
type Response struct {
	Assignments []Assignment   `json:"assignments"`
	Metadata    map[string]any `json:"metadata"`
	Warnings    []string       `json:"warnings"`
	Success     bool           `json:"success"`
}

// Constraints is the request's constraint record. Recognized keys are
// named, typed fields; anything else round-trips through Extra so callers
// can pass constraints this engine does not yet interpret.
//
// Recognized keys:
//
//	max_hours_per_week: advisory cap, surfaced to the validation prompt
//	capacity_hard:      promotes capacity shortfall from warning to violation
//	optimize_for:       advisory optimization hint for the oracle
type Constraints struct {
	MaxHoursPerWeek int
	CapacityHard    bool
	OptimizeFor     string

	// Extra holds unrecognized constraint keys verbatim.
	Extra map[string]any
}

// constraintsWire mirrors the recognized keys on the wire.
type constraintsWire struct {
	MaxHoursPerWeek *int    `json:"max_hours_per_week,omitempty"`
	CapacityHard    *bool   `json:"capacity_hard,omitempty"`
	OptimizeFor     *string `json:"optimize_for,omitempty"`
}

// UnmarshalJSON splits a flat constraints object into recognized fields
// and the residual passthrough map.
func (c *Constraints) UnmarshalJSON(data []byte) error {
	var wire constraintsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.MaxHoursPerWeek != nil {
		c.MaxHoursPerWeek = *wire.MaxHoursPerWeek
	}
	if wire.CapacityHard != nil {
		c.CapacityHard = *wire.CapacityHard
	}
	if wire.OptimizeFor != nil {
		c.OptimizeFor = *wire.OptimizeFor
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "max_hours_per_week")
	delete(all, "capacity_hard")
	delete(all, "optimize_for")
	if len(all) > 0 {
		c.Extra = all
	}
	return nil
}

// MarshalJSON reassembles the flat constraints object.
func (c Constraints) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.MaxHoursPerWeek != 0 {
		out["max_hours_per_week"] = c.MaxHoursPerWeek
	}
	if c.CapacityHard {
		out["capacity_hard"] = c.CapacityHard
	}
	if c.OptimizeFor != "" {
		out["optimize_for"] = c.OptimizeFor
	}
	return json.Marshal(out)
}
