package schedule

import "testing"

func TestCandidates_CertificationFilter(t *testing.T) {
	shift := task(1, 2, 5, 5, []int{10, 11}, 9, 17)
	pool := []Employee{
		employee(1, []int{10, 11, 12}, nil),
		employee(2, []int{10}, nil),
		employee(3, nil, nil),
	}

	got := ids(Candidates(shift, pool, NewBook()))
	if !equalIDs(got, []int{1}) {
		t.Errorf("Candidates() = %v, want [1]", got)
	}
}

func TestCandidates_OverlapExclusion(t *testing.T) {
	morning := task(1, 2, 5, 5, nil, 9, 13)
	afternoon := task(2, 2, 5, 5, nil, 13, 17)
	overlapping := task(3, 2, 5, 5, nil, 12, 15)

	book := NewBook()
	book.Commit(1, morning)

	pool := []Employee{employee(1, nil, nil), employee(2, nil, nil)}

	// Half-open intervals: back-to-back shifts do not conflict.
	if got := ids(Candidates(afternoon, pool, book)); !equalIDs(got, []int{1, 2}) {
		t.Errorf("back-to-back Candidates() = %v, want [1 2]", got)
	}
	if got := ids(Candidates(overlapping, pool, book)); !equalIDs(got, []int{2}) {
		t.Errorf("overlapping Candidates() = %v, want [2]", got)
	}
}

func TestCandidates_VacationExclusivity(t *testing.T) {
	vac := vacationTask(9, 1)
	shift := task(1, 2, 5, 5, nil, 9, 17)

	t.Run("vacationer excluded from work", func(t *testing.T) {
		book := NewBook()
		book.Commit(1, vac)
		got := ids(Candidates(shift, []Employee{employee(1, nil, nil)}, book))
		if len(got) != 0 {
			t.Errorf("Candidates() = %v, want empty", got)
		}
	})

	t.Run("worker excluded from vacation", func(t *testing.T) {
		book := NewBook()
		book.Commit(1, shift)
		got := ids(Candidates(vac, []Employee{employee(1, nil, nil)}, book))
		if len(got) != 0 {
			t.Errorf("Candidates() = %v, want empty", got)
		}
	})
}

func TestCandidates_AlreadyHoldingTask(t *testing.T) {
	shift := task(1, 2, 10, 5, nil, 9, 17)
	book := NewBook()
	book.Commit(1, shift)

	got := ids(Candidates(shift, []Employee{employee(1, nil, nil), employee(2, nil, nil)}, book))
	if !equalIDs(got, []int{2}) {
		t.Errorf("Candidates() = %v, want [2]", got)
	}
}
