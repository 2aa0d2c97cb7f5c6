package schedule

import "sort"

// RankCandidates orders eligible candidates for a task by fairness, best
// first. The comparison chain is fixed and total:
//
//  1. preference rank for the task's category, ascending (stated
//     preference wins over no preference)
//  2. denied_requests_60_days, descending (recently denied employees get
//     priority)
//  3. previous_vacations_60_days, ascending (spread vacations around)
//  4. employee_id, ascending (determinism tiebreak)
//
// The input slice is not modified.
func RankCandidates(t Task, candidates []Employee) []Employee {
	ranked := make([]Employee, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ar, br := a.PreferenceRank(t.Category), b.PreferenceRank(t.Category)
		if ar != br {
			return ar < br
		}
		if a.DeniedRequests60Days != b.DeniedRequests60Days {
			return a.DeniedRequests60Days > b.DeniedRequests60Days
		}
		if a.PreviousVacations60Days != b.PreviousVacations60Days {
			return a.PreviousVacations60Days < b.PreviousVacations60Days
		}
		return a.EmployeeID < b.EmployeeID
	})
	return ranked
}

// RankVacationCandidates orders candidates for the vacation slot: fewest
// recent vacations first, then most denied requests, then employee id.
func RankVacationCandidates(candidates []Employee) []Employee {
	ranked := make([]Employee, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.PreviousVacations60Days != b.PreviousVacations60Days {
			return a.PreviousVacations60Days < b.PreviousVacations60Days
		}
		if a.DeniedRequests60Days != b.DeniedRequests60Days {
			return a.DeniedRequests60Days > b.DeniedRequests60Days
		}
		return a.EmployeeID < b.EmployeeID
	})
	return ranked
}
