package schedule

// Book tracks the commitments accumulated during a single allocation run:
// which time intervals each employee already holds and who is on vacation.
// It exists so eligibility checks stay O(commitments-per-employee) instead
// of rescanning the full assignment list per candidate.
//
// A Book is not safe for concurrent use; each allocation run owns its own.
type Book struct {
	intervals map[int][]interval // employee id -> committed intervals
	vacation  map[int]bool       // employee id -> holds the vacation slot
	tasks     map[int]map[int]bool
}

type interval struct {
	start, end int64 // unix nanos, half-open
}

// NewBook returns an empty commitment book.
func NewBook() *Book {
	return &Book{
		intervals: make(map[int][]interval),
		vacation:  make(map[int]bool),
		tasks:     make(map[int]map[int]bool),
	}
}

// Commit records that the employee now holds the task.
func (b *Book) Commit(employeeID int, t Task) {
	b.intervals[employeeID] = append(b.intervals[employeeID], interval{
		start: t.Start.UnixNano(),
		end:   t.End.UnixNano(),
	})
	if t.IsVacation() {
		b.vacation[employeeID] = true
	}
	if b.tasks[t.TaskID] == nil {
		b.tasks[t.TaskID] = make(map[int]bool)
	}
	b.tasks[t.TaskID][employeeID] = true
}

// Holds reports whether the employee is already committed to the task.
func (b *Book) Holds(employeeID, taskID int) bool {
	return b.tasks[taskID][employeeID]
}

// Assigned returns how many employees are committed to the task.
func (b *Book) Assigned(taskID int) int {
	return len(b.tasks[taskID])
}

// OnVacation reports whether the employee holds the vacation slot.
func (b *Book) OnVacation(employeeID int) bool {
	return b.vacation[employeeID]
}

// Conflicts reports whether the task's interval overlaps any commitment the
// employee already holds, or whether vacation exclusivity would be broken.
// Vacation excludes everything, and anyone with an existing commitment
// cannot also take vacation.
func (b *Book) Conflicts(employeeID int, t Task) bool {
	if b.vacation[employeeID] {
		return true
	}
	if t.IsVacation() && len(b.intervals[employeeID]) > 0 {
		return true
	}
	ts, te := t.Start.UnixNano(), t.End.UnixNano()
	for _, iv := range b.intervals[employeeID] {
		if iv.start < te && ts < iv.end {
			return true
		}
	}
	return false
}
