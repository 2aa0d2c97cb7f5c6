package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

// Test fixtures and the capability-keyed mock oracle shared across the
// package tests.

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func task(id, category, capacity, perStaff int, certs []int, startHour, endHour int) schedule.Task {
	return schedule.Task{
		TaskID:                   id,
		Category:                 category,
		CustomerCapacity:         capacity,
		RequiredCapacityPerStaff: perStaff,
		RequiredCertifications:   certs,
		Start:                    at(startHour),
		End:                      at(endHour),
	}
}

func employee(id int, certs []int) schedule.Employee {
	return schedule.Employee{EmployeeID: id, Name: "emp", Certifications: certs}
}

func basicRequest() *schedule.Request {
	return &schedule.Request{
		Employees: []schedule.Employee{
			employee(1, []int{1}),
			employee(2, []int{1}),
		},
		Tasks: []schedule.Task{
			task(1, 2, 10, 5, []int{1}, 9, 17),
		},
		Country: "US",
	}
}

// mockReply is one canned oracle answer for a capability.
type mockReply struct {
	content string
	err     error
}

// mockOracle answers by capability and records every request it saw.
type mockOracle struct {
	mu      sync.Mutex
	replies map[string]mockReply
	calls   []llm.Request
}

func newMockOracle(replies map[string]mockReply) *mockOracle {
	return &mockOracle{replies: replies}
}

func (m *mockOracle) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	reply, ok := m.replies[req.Capability]
	if !ok {
		reply = mockReply{content: "{}"}
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return &llm.Response{Content: reply.content, Model: "mock"}, nil
}

func (m *mockOracle) callsFor(capability string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Capability == capability {
			n++
		}
	}
	return n
}
