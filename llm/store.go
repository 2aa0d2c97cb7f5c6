package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
)

var (
	globalCallStore   *CallStore
	globalCallStoreMu sync.RWMutex
	initOnce          sync.Once
	initErr           error
)

// advisoryCallSubject is the JetStream subject call records are published to.
const advisoryCallSubject = "advisory.calls"

// CallRecord captures one oracle call with full context for trajectory
// tracking. It is published as a message payload, so schedule runs can be
// replayed against the exact advisory input they received.
type CallRecord struct {
	// RequestID uniquely identifies this call.
	RequestID string `json:"request_id"`

	// TraceID correlates this call with other messages in the same
	// request flow.
	TraceID string `json:"trace_id,omitempty"`

	// RunID is the scheduling run that issued this call.
	RunID string `json:"run_id,omitempty"`

	// Capability is the semantic capability requested.
	Capability string `json:"capability"`

	// Model is the model that served (or was last tried for) the call.
	Model string `json:"model,omitempty"`

	// Provider is the oracle provider (xai, ollama, anthropic, openai).
	Provider string `json:"provider,omitempty"`

	// Messages is the input chat history.
	Messages []Message `json:"messages"`

	// Response is the generated content.
	Response string `json:"response,omitempty"`

	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// FinishReason indicates why generation stopped.
	FinishReason string `json:"finish_reason,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`

	// Error holds the failure message when the call did not succeed.
	Error string `json:"error,omitempty"`

	// Retries is the number of retry attempts made.
	Retries int `json:"retries"`

	// FallbacksUsed lists models tried before success.
	FallbacksUsed []string `json:"fallbacks_used,omitempty"`
}

// Schema returns the message type for call records.
func (r *CallRecord) Schema() message.Type {
	return CallRecordType
}

// Validate ensures the record has required fields.
func (r *CallRecord) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if r.Capability == "" {
		return fmt.Errorf("capability is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler for the Payload interface.
func (r *CallRecord) MarshalJSON() ([]byte, error) {
	type Alias CallRecord
	return json.Marshal((*Alias)(r))
}

// UnmarshalJSON implements json.Unmarshaler for the Payload interface.
func (r *CallRecord) UnmarshalJSON(data []byte) error {
	type Alias CallRecord
	return json.Unmarshal(data, (*Alias)(r))
}

// CallStore publishes oracle call records over JetStream.
type CallStore struct {
	nc     *natsclient.Client
	logger *slog.Logger
}

// CallStoreOption configures a CallStore.
type CallStoreOption func(*CallStore)

// WithStoreLogger sets the logger for the call store.
func WithStoreLogger(logger *slog.Logger) CallStoreOption {
	return func(s *CallStore) { s.logger = logger }
}

// NewCallStore creates a call store over the given NATS client.
func NewCallStore(nc *natsclient.Client, opts ...CallStoreOption) (*CallStore, error) {
	if nc == nil {
		return nil, fmt.Errorf("NATS client required")
	}

	s := &CallStore{
		nc:     nc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// InitGlobalCallStore initializes the global call store once during
// startup, after the NATS connection is established. Subsequent calls
// return the first result. On failure GlobalCallStore returns nil, which
// disables trajectory tracking without breaking oracle calls.
func InitGlobalCallStore(nc *natsclient.Client, opts ...CallStoreOption) error {
	initOnce.Do(func() {
		store, err := NewCallStore(nc, opts...)
		if err != nil {
			initErr = err
			return
		}
		globalCallStoreMu.Lock()
		globalCallStore = store
		globalCallStoreMu.Unlock()
	})
	return initErr
}

// GlobalCallStore returns the global call store, or nil when
// InitGlobalCallStore has not run.
func GlobalCallStore() *CallStore {
	globalCallStoreMu.RLock()
	defer globalCallStoreMu.RUnlock()
	return globalCallStore
}

// Store publishes a call record to the advisory call subject.
func (s *CallStore) Store(ctx context.Context, record *CallRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := record.Validate(); err != nil {
		return err
	}

	msg := message.NewBaseMessage(CallRecordType, record, "llm")
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal call record: %w", err)
	}

	js, err := s.nc.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}
	if _, err := js.Publish(ctx, advisoryCallSubject, data); err != nil {
		return fmt.Errorf("publish call record: %w", err)
	}

	s.logger.Debug("Published oracle call record",
		"request_id", record.RequestID,
		"run_id", record.RunID,
		"capability", record.Capability)

	return nil
}

// SortByStartTime sorts records chronologically by StartedAt.
func SortByStartTime(records []*CallRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})
}

// TraceContext holds correlation identifiers carried through a context.
type TraceContext struct {
	TraceID string
	RunID   string
}

type traceContextKey struct{}

// WithTraceContext attaches trace information to a context.
func WithTraceContext(ctx context.Context, tc TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTraceContext extracts trace information from a context.
func GetTraceContext(ctx context.Context) TraceContext {
	if tc, ok := ctx.Value(traceContextKey{}).(TraceContext); ok {
		return tc
	}
	return TraceContext{}
}
