package schedule

import "time"

// Test fixtures shared across the package tests.

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func task(id, category, capacity, perStaff int, certs []int, startHour, endHour int) Task {
	return Task{
		TaskID:                   id,
		Category:                 category,
		CustomerCapacity:         capacity,
		RequiredCapacityPerStaff: perStaff,
		RequiredCertifications:   certs,
		Start:                    at(startHour),
		End:                      at(endHour),
	}
}

func vacationTask(id, slots int) Task {
	return Task{
		TaskID:                   id,
		Category:                 VacationCategory,
		RequiredCapacityPerStaff: slots,
		Start:                    at(0),
		End:                      at(24),
	}
}

func employee(id int, certs, prefs []int) Employee {
	return Employee{
		EmployeeID:     id,
		Name:           "emp",
		Certifications: certs,
		Preferences:    prefs,
	}
}
