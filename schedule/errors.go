package schedule

import (
	"errors"
	"fmt"
)

// ConfigurationError marks structurally unsatisfiable input, such as a
// non-vacation task declaring zero capacity per staff member. It is fatal
// for the run: no fallback can produce a meaningful schedule from it.
type ConfigurationError struct {
	TaskID int
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error on task %d: %s", e.TaskID, e.Reason)
}

// RequestError marks a malformed or empty client request. The caller made
// a mistake; the engine was never started.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsRequestError reports whether err is (or wraps) a RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// ValidateRequest rejects requests the pipeline cannot act on.
func ValidateRequest(req *Request) error {
	if req == nil {
		return &RequestError{Reason: "request is nil"}
	}
	if len(req.Employees) == 0 {
		return &RequestError{Reason: "no employees provided"}
	}
	if len(req.Tasks) == 0 {
		return &RequestError{Reason: "no tasks provided"}
	}
	seen := make(map[int]bool, len(req.Tasks))
	for _, t := range req.Tasks {
		if seen[t.TaskID] {
			return &RequestError{Reason: fmt.Sprintf("duplicate task_id %d", t.TaskID)}
		}
		seen[t.TaskID] = true
		if !t.End.After(t.Start) {
			return &RequestError{Reason: fmt.Sprintf("task %d has non-positive duration", t.TaskID)}
		}
	}
	return nil
}
