package schedule

// NeededStaff computes how many staff members a task requires.
//
// When customer_capacity is zero the task asks for a fixed number of
// slots and required_capacity_per_staff is that count directly; vacation
// tasks always take this form. Otherwise the result is
// ceil(customer_capacity / required_capacity_per_staff), at least one
// staff member whenever any capacity is demanded.
//
// A non-vacation task with required_capacity_per_staff == 0 is structurally
// unsatisfiable and yields a ConfigurationError.
func NeededStaff(t Task) (int, error) {
	if !t.IsVacation() && t.RequiredCapacityPerStaff == 0 {
		return 0, &ConfigurationError{
			TaskID: t.TaskID,
			Reason: "required_capacity_per_staff is zero for a non-vacation task",
		}
	}
	if t.CustomerCapacity <= 0 {
		return t.RequiredCapacityPerStaff, nil
	}
	n := (t.CustomerCapacity + t.RequiredCapacityPerStaff - 1) / t.RequiredCapacityPerStaff
	return n, nil
}
