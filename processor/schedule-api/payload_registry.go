package scheduleapi

import "github.com/c360studio/semstreams/component"

func init() {
	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "schedule",
		Category:    "request",
		Version:     "v1",
		Description: "Staff scheduling request with employees, tasks, and constraints",
		Factory:     func() any { return &ScheduleTrigger{} },
	}); err != nil {
		panic("failed to register schedule request payload: " + err.Error())
	}

	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "schedule",
		Category:    "result",
		Version:     "v1",
		Description: "Finished schedule with assignments and run metadata",
		Factory:     func() any { return &ScheduleResult{} },
	}); err != nil {
		panic("failed to register schedule result payload: " + err.Error())
	}
}
