package scheduleapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/rosterflow/schedule"
)

// ScheduleTriggerType is the message type for schedule request payloads.
var ScheduleTriggerType = message.Type{Domain: "schedule", Category: "request", Version: "v1"}

// ScheduleResultType is the message type for schedule result payloads.
var ScheduleResultType = message.Type{Domain: "schedule", Category: "result", Version: "v1"}

// CallbackFields provides async dispatch support for any trigger payload.
// When an upstream workflow dispatches a request, it injects these fields
// so the component can publish an AsyncStepResult back to the callback
// subject instead of the shared result subject.
type CallbackFields struct {
	// CallbackSubject is where to publish AsyncStepResult when done.
	CallbackSubject string `json:"callback_subject,omitempty"`

	// TaskID correlates this request with the pending workflow step.
	TaskID string `json:"task_id,omitempty"`

	// ExecutionID identifies the workflow execution this belongs to.
	ExecutionID string `json:"execution_id,omitempty"`
}

// HasCallback returns true if callback fields were injected.
func (c *CallbackFields) HasCallback() bool {
	return c.CallbackSubject != "" && c.TaskID != ""
}

// AsyncStepResult is the envelope published to callback subjects.
type AsyncStepResult struct {
	TaskID      string          `json:"task_id"`
	ExecutionID string          `json:"execution_id,omitempty"`
	Status      string          `json:"status"`
	Output      json.RawMessage `json:"output,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Async step result status constants.
const (
	AsyncStatusSuccess = "success"
	AsyncStatusFailed  = "failed"
)

// PublishCallbackSuccess publishes a successful AsyncStepResult to the
// callback subject via JetStream.
func (c *CallbackFields) PublishCallbackSuccess(ctx context.Context, nc *natsclient.Client, output any) error {
	return c.publishCallback(ctx, nc, AsyncStatusSuccess, output, "")
}

// PublishCallbackFailure publishes a failed AsyncStepResult to the
// callback subject via JetStream.
func (c *CallbackFields) PublishCallbackFailure(ctx context.Context, nc *natsclient.Client, errMsg string) error {
	return c.publishCallback(ctx, nc, AsyncStatusFailed, nil, errMsg)
}

func (c *CallbackFields) publishCallback(ctx context.Context, nc *natsclient.Client, status string, output any, errMsg string) error {
	if !c.HasCallback() {
		return fmt.Errorf("no callback configured")
	}

	var outputJSON json.RawMessage
	if output != nil {
		var err error
		outputJSON, err = json.Marshal(output)
		if err != nil {
			return fmt.Errorf("marshal callback output: %w", err)
		}
	}

	result := &AsyncStepResult{
		TaskID:      c.TaskID,
		ExecutionID: c.ExecutionID,
		Status:      status,
		Output:      outputJSON,
		Error:       errMsg,
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal callback result: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream for callback: %w", err)
	}

	if _, err := js.Publish(ctx, c.CallbackSubject, data); err != nil {
		return fmt.Errorf("publish callback to %s: %w", c.CallbackSubject, err)
	}

	return nil
}

// ScheduleTrigger is the wire payload for a schedule request.
type ScheduleTrigger struct {
	CallbackFields

	// RequestID correlates the request with its result.
	RequestID string `json:"request_id,omitempty"`

	// TraceID carries the caller's trace correlation id.
	TraceID string `json:"trace_id,omitempty"`

	// ReplySubject overrides the component's result subject for this
	// request.
	ReplySubject string `json:"reply_subject,omitempty"`

	// Request is the scheduling problem to solve.
	Request *schedule.Request `json:"request"`
}

// Schema implements message.Payload.
func (t *ScheduleTrigger) Schema() message.Type {
	return ScheduleTriggerType
}

// Validate implements message.Payload.
func (t *ScheduleTrigger) Validate() error {
	if t.Request == nil {
		return fmt.Errorf("request is required")
	}
	return schedule.ValidateRequest(t.Request)
}

// MarshalJSON implements json.Marshaler.
func (t *ScheduleTrigger) MarshalJSON() ([]byte, error) {
	type Alias ScheduleTrigger
	return json.Marshal((*Alias)(t))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *ScheduleTrigger) UnmarshalJSON(data []byte) error {
	type Alias ScheduleTrigger
	return json.Unmarshal(data, (*Alias)(t))
}

// ScheduleResult is the wire payload for a finished schedule.
type ScheduleResult struct {
	// RequestID echoes the request's correlation id.
	RequestID string `json:"request_id,omitempty"`

	// Status is "completed" or "failed".
	Status string `json:"status"`

	// Response is the pipeline output; nil on failure.
	Response *schedule.Response `json:"response,omitempty"`

	// Error carries the failure reason when Status is "failed".
	Error string `json:"error,omitempty"`
}

// Schema implements message.Payload.
func (r *ScheduleResult) Schema() message.Type {
	return ScheduleResultType
}

// Validate implements message.Payload.
func (r *ScheduleResult) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *ScheduleResult) MarshalJSON() ([]byte, error) {
	type Alias ScheduleResult
	return json.Marshal((*Alias)(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ScheduleResult) UnmarshalJSON(data []byte) error {
	type Alias ScheduleResult
	return json.Unmarshal(data, (*Alias)(r))
}

// parseTrigger decodes a schedule request from wire data. It accepts both a
// BaseMessage envelope (with the trigger under "payload") and a raw trigger
// object, so direct publishers do not have to wrap their requests.
func parseTrigger(data []byte) (*ScheduleTrigger, error) {
	var envelope struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Payload) > 0 {
		data = envelope.Payload
	}

	var trigger ScheduleTrigger
	if err := json.Unmarshal(data, &trigger); err != nil {
		return nil, fmt.Errorf("parse schedule trigger: %w", err)
	}
	if trigger.Request == nil {
		return nil, fmt.Errorf("schedule trigger missing request")
	}
	return &trigger, nil
}
