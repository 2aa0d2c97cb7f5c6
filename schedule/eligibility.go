package schedule

// Candidates filters the employee pool down to those who may legally take
// the task given current commitments: full certification coverage, no
// interval overlap, and vacation exclusivity in both directions. The
// returned slice preserves the pool's order; ranking is a separate pass.
func Candidates(t Task, pool []Employee, book *Book) []Employee {
	var out []Employee
	for _, e := range pool {
		if !e.HasCertifications(t) {
			continue
		}
		if book.Holds(e.EmployeeID, t.TaskID) {
			continue
		}
		if book.Conflicts(e.EmployeeID, t) {
			continue
		}
		out = append(out, e)
	}
	return out
}
