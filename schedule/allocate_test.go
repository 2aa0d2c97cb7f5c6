package schedule

import (
	"reflect"
	"testing"
)

func byTask(assignments []Assignment) map[int][]int {
	out := make(map[int][]int)
	for _, a := range assignments {
		out[a.TaskID] = append(out[a.TaskID], a.EmployeeID)
	}
	return out
}

func TestAllocate_FairnessFill(t *testing.T) {
	tasks := []Task{task(1, 2, 10, 5, []int{1}, 9, 17)}
	pool := []Employee{
		employee(1, []int{1}, nil),
		employee(2, []int{1}, nil),
		employee(3, nil, nil), // uncertified
	}

	got, err := NewEngine().Allocate(tasks, pool, nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if want := map[int][]int{1: {1, 2}}; !reflect.DeepEqual(byTask(got), want) {
		t.Errorf("assignments = %v, want %v", byTask(got), want)
	}
	for _, a := range got {
		if a.Confidence != FallbackConfidence {
			t.Errorf("fallback confidence = %v, want %v", a.Confidence, FallbackConfidence)
		}
	}
}

func TestAllocate_FixedSlotTaskIsStaffed(t *testing.T) {
	// Zero customer capacity means required_capacity_per_staff is a
	// fixed slot count, not an empty task.
	tasks := []Task{task(1, 2, 0, 2, []int{1}, 9, 17)}
	pool := []Employee{
		employee(1, []int{1}, nil),
		employee(2, []int{1}, nil),
		employee(3, []int{1}, nil),
	}

	got, err := NewEngine().Allocate(tasks, pool, nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if want := map[int][]int{1: {1, 2}}; !reflect.DeepEqual(byTask(got), want) {
		t.Errorf("assignments = %v, want %v", byTask(got), want)
	}
}

func TestAllocate_SuggestionsVerifiedThenAccepted(t *testing.T) {
	tasks := []Task{task(1, 2, 5, 5, []int{1}, 9, 17)}
	pool := []Employee{
		employee(1, []int{1}, nil),
		employee(2, []int{1}, nil),
		employee(3, nil, nil),
	}
	suggestions := []Suggestion{
		{TaskID: 1, EmployeeID: 3, Confidence: 0.95}, // uncertified, dropped
		{TaskID: 1, EmployeeID: 2, Confidence: 0.8},
	}

	got, err := NewEngine().Allocate(tasks, pool, suggestions)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != 2 {
		t.Fatalf("assignments = %+v, want single assignment to employee 2", got)
	}
	if got[0].Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", got[0].Confidence)
	}
}

func TestAllocate_SuggestionConfidenceDefaultsAndClamps(t *testing.T) {
	tasks := []Task{task(1, 2, 10, 5, nil, 9, 17)}
	pool := []Employee{employee(1, nil, nil), employee(2, nil, nil)}
	suggestions := []Suggestion{
		{TaskID: 1, EmployeeID: 1},                  // no confidence given
		{TaskID: 1, EmployeeID: 2, Confidence: 1.7}, // out of range
	}

	got, err := NewEngine().Allocate(tasks, pool, suggestions)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if got[0].Confidence != DefaultSuggestionConfidence {
		t.Errorf("default confidence = %v, want %v", got[0].Confidence, DefaultSuggestionConfidence)
	}
	if got[1].Confidence != 1 {
		t.Errorf("clamped confidence = %v, want 1", got[1].Confidence)
	}
}

func TestAllocate_NoDoubleBookingAcrossOverlappingTasks(t *testing.T) {
	tasks := []Task{
		task(1, 2, 5, 5, nil, 9, 13),
		task(2, 2, 5, 5, nil, 12, 16),
	}
	pool := []Employee{employee(1, nil, nil), employee(2, nil, nil)}

	got, err := NewEngine().Allocate(tasks, pool, nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	want := map[int][]int{1: {1}, 2: {2}}
	if !reflect.DeepEqual(byTask(got), want) {
		t.Errorf("assignments = %v, want %v", byTask(got), want)
	}
}

func TestAllocate_UnderfillIsNotAnError(t *testing.T) {
	tasks := []Task{task(1, 2, 20, 5, nil, 9, 17)} // needs 4, pool has 1
	pool := []Employee{employee(1, nil, nil)}

	got, err := NewEngine().Allocate(tasks, pool, nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("assignments = %d, want 1 (partial fill)", len(got))
	}
}

func TestAllocate_VacationDefaultsToEmpty(t *testing.T) {
	tasks := []Task{vacationTask(9, 2), task(1, 2, 5, 5, nil, 9, 17)}
	pool := []Employee{employee(1, nil, nil), employee(2, nil, nil), employee(3, nil, nil)}

	got, err := NewEngine().Allocate(tasks, pool, nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if len(byTask(got)[9]) != 0 {
		t.Errorf("vacation assignments = %v, want none without suggestions", byTask(got)[9])
	}
}

func TestAllocate_VacationViaSuggestionGated(t *testing.T) {
	tasks := []Task{vacationTask(9, 2)}
	pool := []Employee{
		{EmployeeID: 1, PreviousVacations60Days: 20},
		{EmployeeID: 2, PreviousVacations60Days: 1},
	}
	gate := func(e Employee) bool { return e.PreviousVacations60Days <= 12 }
	suggestions := []Suggestion{
		{TaskID: 9, EmployeeID: 1},
		{TaskID: 9, EmployeeID: 2},
	}

	got, err := NewEngine(WithVacationGate(gate)).Allocate(tasks, pool, suggestions)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if want := map[int][]int{9: {2}}; !reflect.DeepEqual(byTask(got), want) {
		t.Errorf("assignments = %v, want %v", byTask(got), want)
	}
}

func TestAllocate_VacationFairnessPolicy(t *testing.T) {
	tasks := []Task{vacationTask(9, 1)}
	pool := []Employee{
		{EmployeeID: 1, PreviousVacations60Days: 4},
		{EmployeeID: 2, PreviousVacations60Days: 0},
	}

	got, err := NewEngine(WithVacationPolicy(VacationPolicyFairness)).Allocate(tasks, pool, nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if want := map[int][]int{9: {2}}; !reflect.DeepEqual(byTask(got), want) {
		t.Errorf("assignments = %v, want %v", byTask(got), want)
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	tasks := []Task{
		task(2, 3, 10, 5, nil, 13, 17),
		task(1, 2, 10, 5, nil, 9, 13),
		vacationTask(9, 1),
	}
	pool := []Employee{
		employee(3, nil, []int{2}),
		employee(1, nil, nil),
		employee(2, nil, []int{3}),
	}
	suggestions := []Suggestion{{TaskID: 1, EmployeeID: 2, Confidence: 0.9}}

	first, err := NewEngine().Allocate(tasks, pool, suggestions)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := NewEngine().Allocate(tasks, pool, suggestions)
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\nvs\n%+v", i, first, again)
		}
	}
}

func TestAllocate_ConfigurationErrorPropagates(t *testing.T) {
	tasks := []Task{task(1, 2, 10, 0, nil, 9, 17)}
	_, err := NewEngine().Allocate(tasks, []Employee{employee(1, nil, nil)}, nil)
	if !IsConfigurationError(err) {
		t.Fatalf("Allocate() error = %v, want ConfigurationError", err)
	}
}
