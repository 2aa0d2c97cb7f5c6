package schedule

import "sort"

// Confidence levels attached to assignments by their decision source.
const (
	// FallbackConfidence marks assignments picked by the deterministic
	// fairness ranking with no advisory input.
	FallbackConfidence = 0.6

	// DefaultSuggestionConfidence is used for advisory suggestions that
	// do not carry their own confidence.
	DefaultSuggestionConfidence = 0.9
)

// Suggestion is one advisory assignment proposal. Suggestions are untrusted
// input: the engine verifies each against the same eligibility rules as its
// own picks and silently drops anything that fails.
type Suggestion struct {
	TaskID     int     `json:"task_id"`
	EmployeeID int     `json:"employee_id"`
	Confidence float64 `json:"confidence,omitempty"`
}

// VacationPolicy controls whether the engine grants vacation slots on its
// own when no advisory suggestion claims them.
type VacationPolicy string

const (
	// VacationPolicyNone leaves unsuggested vacation slots empty.
	VacationPolicyNone VacationPolicy = "none"

	// VacationPolicyFairness fills vacation slots by vacation-fairness
	// ranking, still gated by the vacation gate.
	VacationPolicyFairness VacationPolicy = "fairness"
)

// Engine is the deterministic allocation engine. Given the same tasks,
// employees, suggestions, and options, Allocate always produces the same
// assignment list.
type Engine struct {
	vacationGate   func(Employee) bool
	vacationPolicy VacationPolicy
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithVacationGate installs the predicate that decides whether an employee
// may be granted the vacation slot at all. A nil gate admits everyone.
func WithVacationGate(gate func(Employee) bool) EngineOption {
	return func(e *Engine) { e.vacationGate = gate }
}

// WithVacationPolicy selects the unsuggested-vacation behavior.
func WithVacationPolicy(p VacationPolicy) EngineOption {
	return func(e *Engine) { e.vacationPolicy = p }
}

// NewEngine constructs an Engine with the default policy of never granting
// vacation without an explicit suggestion.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{vacationPolicy: VacationPolicyNone}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) mayTakeVacation(emp Employee) bool {
	if e.vacationGate == nil {
		return true
	}
	return e.vacationGate(emp)
}

// Allocate builds the assignment list for a run.
//
// Tasks are processed in start-time order with the vacation task deferred
// to the end, task id breaking ties. Per task, verified advisory
// suggestions are committed first, then remaining slots are filled by
// fairness ranking. Slots that cannot be filled stay empty; under-fill is
// the compliance checker's concern, not an allocation error.
//
// The only error Allocate returns is a ConfigurationError from staffing
// derivation.
func (e *Engine) Allocate(tasks []Task, employees []Employee, suggestions []Suggestion) ([]Assignment, error) {
	ordered := make([]Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.IsVacation() != b.IsVacation() {
			return !a.IsVacation()
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.TaskID < b.TaskID
	})

	byName := make(map[int]string, len(employees))
	for _, emp := range employees {
		byName[emp.EmployeeID] = emp.Name
	}

	suggested := make(map[int][]Suggestion)
	for _, s := range suggestions {
		suggested[s.TaskID] = append(suggested[s.TaskID], s)
	}

	book := NewBook()
	assignments := make([]Assignment, 0, len(ordered))

	for _, t := range ordered {
		needed, err := NeededStaff(t)
		if err != nil {
			return nil, err
		}
		if needed <= 0 {
			continue
		}

		candidates := Candidates(t, employees, book)
		if t.IsVacation() {
			candidates = e.vacationEligible(candidates)
		}
		eligible := make(map[int]Employee, len(candidates))
		for _, c := range candidates {
			eligible[c.EmployeeID] = c
		}

		commit := func(emp Employee, confidence float64) {
			book.Commit(emp.EmployeeID, t)
			assignments = append(assignments, Assignment{
				TaskID:       t.TaskID,
				EmployeeID:   emp.EmployeeID,
				EmployeeName: byName[emp.EmployeeID],
				Confidence:   confidence,
			})
		}

		// Verified advisory suggestions first, in arrival order.
		for _, s := range suggested[t.TaskID] {
			if book.Assigned(t.TaskID) >= needed {
				break
			}
			emp, ok := eligible[s.EmployeeID]
			if !ok || book.Holds(s.EmployeeID, t.TaskID) {
				continue
			}
			commit(emp, clampConfidence(s.Confidence))
		}

		if t.IsVacation() && e.vacationPolicy != VacationPolicyFairness {
			continue
		}

		var ranked []Employee
		if t.IsVacation() {
			ranked = RankVacationCandidates(candidates)
		} else {
			ranked = RankCandidates(t, candidates)
		}
		for _, emp := range ranked {
			if book.Assigned(t.TaskID) >= needed {
				break
			}
			if book.Holds(emp.EmployeeID, t.TaskID) {
				continue
			}
			commit(emp, FallbackConfidence)
		}
	}

	return assignments, nil
}

func (e *Engine) vacationEligible(candidates []Employee) []Employee {
	var out []Employee
	for _, c := range candidates {
		if e.mayTakeVacation(c) {
			out = append(out, c)
		}
	}
	return out
}

func clampConfidence(c float64) float64 {
	if c <= 0 {
		return DefaultSuggestionConfidence
	}
	if c > 1 {
		return 1
	}
	return c
}
