// Package scheduleapi provides the schedule-api processor. It consumes
// scheduling requests from JetStream, runs them through the constraint
// pipeline, and publishes finished schedules. It also exposes an HTTP
// surface for synchronous scheduling and health checks.
package scheduleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/rosterflow/laws"
	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/model"
	"github.com/c360studio/rosterflow/pipeline"
	"github.com/c360studio/rosterflow/schedule"
)

// Component implements the schedule-api processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	orchestrator *pipeline.Orchestrator
	lawRegistry  *laws.Registry
	lawWatcher   *laws.Watcher
	metrics      *metrics

	// JetStream consumer
	consumer jetstream.Consumer
	stream   jetstream.Stream

	// Lifecycle state machine
	// States: 0=stopped, 1=starting, 2=running, 3=stopping
	state     atomic.Int32
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	requestsProcessed  atomic.Int64
	schedulesGenerated atomic.Int64
	runsFailed         atomic.Int64
	lastActivityMu     sync.RWMutex
	lastActivity       time.Time
}

const (
	stateStopped  = 0
	stateStarting = 1
	stateRunning  = 2
	stateStopping = 3
)

// NewComponent creates a new schedule-api processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Apply defaults
	defaults := DefaultConfig()
	if config.StreamName == "" {
		config.StreamName = defaults.StreamName
	}
	if config.ConsumerName == "" {
		config.ConsumerName = defaults.ConsumerName
	}
	if config.RequestSubject == "" {
		config.RequestSubject = defaults.RequestSubject
	}
	if config.ResultSubject == "" {
		config.ResultSubject = defaults.ResultSubject
	}
	if config.VacationPolicy == "" {
		config.VacationPolicy = defaults.VacationPolicy
	}
	if config.Ports == nil {
		config.Ports = defaults.Ports
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := deps.GetLogger()

	lawRegistry := laws.NewRegistry()
	if config.LawsPath != "" {
		if err := laws.LoadInto(lawRegistry, config.LawsPath); err != nil {
			logger.Warn("Failed to load labor-law rules, using built-in table",
				"path", config.LawsPath, "error", err)
		}
	}

	var oracle pipeline.Completer
	if !config.OracleDisabled {
		oracle = llm.NewClient(model.Global(),
			llm.WithLogger(logger),
			llm.WithCallStore(llm.GlobalCallStore()),
		)
	}

	orchestrator := pipeline.NewOrchestrator(oracle, lawRegistry,
		pipeline.WithLogger(logger),
		pipeline.WithVacationPolicy(schedule.VacationPolicy(config.VacationPolicy)),
	)

	return &Component{
		name:         "schedule-api",
		config:       config,
		natsClient:   deps.NATSClient,
		logger:       logger,
		orchestrator: orchestrator,
		lawRegistry:  lawRegistry,
		metrics:      newMetrics(),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized schedule-api",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"request_subject", c.config.RequestSubject)
	return nil
}

// Start begins processing schedule requests.
func (c *Component) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(stateStopped, stateStarting) {
		currentState := c.state.Load()
		if currentState == stateRunning || currentState == stateStarting {
			return fmt.Errorf("component already running or starting")
		}
		return fmt.Errorf("component in invalid state: %d", currentState)
	}

	defer func() {
		if c.state.Load() == stateStarting {
			c.state.Store(stateStopped)
		}
	}()

	if c.natsClient == nil {
		return fmt.Errorf("NATS client required")
	}

	js, err := c.natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)

	stream, err := js.Stream(subCtx, c.config.StreamName)
	if err != nil {
		cancel()
		return fmt.Errorf("get stream %s: %w", c.config.StreamName, err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		FilterSubject: c.config.RequestSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       300 * time.Second, // Allow time for oracle calls
		MaxDeliver:    3,
	}

	consumer, err := stream.CreateOrUpdateConsumer(subCtx, consumerConfig)
	if err != nil {
		cancel()
		return fmt.Errorf("create consumer: %w", err)
	}

	var watcher *laws.Watcher
	if c.config.LawsPath != "" && c.config.WatchLaws {
		watcher, err = laws.NewWatcher(c.lawRegistry, c.config.LawsPath, c.logger)
		if err != nil {
			c.logger.Warn("Failed to watch labor-law rules", "path", c.config.LawsPath, "error", err)
		} else if err := watcher.Start(subCtx); err != nil {
			c.logger.Warn("Failed to start labor-law watcher", "error", err)
			watcher = nil
		}
	}

	c.mu.Lock()
	c.stream = stream
	c.consumer = consumer
	c.lawWatcher = watcher
	c.cancel = cancel
	c.startTime = time.Now()
	c.mu.Unlock()

	go c.consumeLoop(subCtx)

	c.state.Store(stateRunning)

	c.logger.Info("schedule-api started",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"subject", c.config.RequestSubject,
		"oracle_disabled", c.config.OracleDisabled)

	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	if !c.state.CompareAndSwap(stateRunning, stateStopping) {
		currentState := c.state.Load()
		if currentState == stateStopped || currentState == stateStopping {
			return nil
		}
		return fmt.Errorf("component in unexpected state: %d", currentState)
	}

	c.mu.Lock()
	cancel := c.cancel
	watcher := c.lawWatcher
	c.cancel = nil
	c.lawWatcher = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			c.logger.Warn("Failed to stop labor-law watcher", "error", err)
		}
	}

	c.state.Store(stateStopped)

	c.logger.Info("schedule-api stopped",
		"requests_processed", c.requestsProcessed.Load(),
		"schedules_generated", c.schedulesGenerated.Load(),
		"runs_failed", c.runsFailed.Load())

	return nil
}

// consumeLoop continuously consumes messages from the JetStream consumer.
func (c *Component) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Debug("Fetch timeout or error", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg)
		}

		if msgs.Error() != nil && msgs.Error() != context.DeadlineExceeded {
			c.logger.Warn("Message fetch error", "error", msgs.Error())
		}
	}
}

// handleMessage processes a single schedule request.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	if ctx.Err() != nil {
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message during shutdown", "error", err)
		}
		return
	}

	c.requestsProcessed.Add(1)
	c.updateLastActivity()

	trigger, err := parseTrigger(msg.Data())
	if err != nil {
		c.logger.Error("Failed to parse schedule request", "error", err)
		// Malformed payloads never become valid; drop instead of redeliver.
		if err := msg.Ack(); err != nil {
			c.logger.Warn("Failed to ACK message", "error", err)
		}
		c.metrics.recordRun("invalid", nil, 0)
		return
	}

	c.logger.Info("Processing schedule request",
		"request_id", trigger.RequestID,
		"employees", len(trigger.Request.Employees),
		"tasks", len(trigger.Request.Tasks),
		"trace_id", trigger.TraceID)

	runCtx := ctx
	if trigger.TraceID != "" {
		runCtx = llm.WithTraceContext(ctx, llm.TraceContext{TraceID: trigger.TraceID})
	}

	start := time.Now()
	resp, runErr := c.orchestrator.Run(runCtx, trigger.Request)
	elapsed := time.Since(start)

	result := &ScheduleResult{RequestID: trigger.RequestID}
	if runErr != nil {
		c.runsFailed.Add(1)
		result.Status = "failed"
		result.Error = runErr.Error()
		c.metrics.recordRun("failed", nil, elapsed.Seconds())
		c.logger.Error("Scheduling run failed",
			"request_id", trigger.RequestID, "error", runErr)
	} else {
		c.schedulesGenerated.Add(1)
		result.Status = "completed"
		result.Response = resp
		c.metrics.recordRun(outcomeFor(resp), degradedStages(resp), elapsed.Seconds())
	}

	if err := c.publishResult(ctx, trigger, result); err != nil {
		c.logger.Error("Failed to publish schedule result",
			"request_id", trigger.RequestID, "error", err)
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message", "error", err)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		c.logger.Warn("Failed to ACK message", "error", err)
	}

	c.logger.Info("Schedule request finished",
		"request_id", trigger.RequestID,
		"status", result.Status,
		"duration_ms", elapsed.Milliseconds())
}

// publishResult delivers the result to the request's callback, its reply
// subject, or the component's result subject, in that order of preference.
func (c *Component) publishResult(ctx context.Context, trigger *ScheduleTrigger, result *ScheduleResult) error {
	if trigger.HasCallback() {
		if result.Status == "failed" {
			return trigger.PublishCallbackFailure(ctx, c.natsClient, result.Error)
		}
		return trigger.PublishCallbackSuccess(ctx, c.natsClient, result)
	}

	subject := trigger.ReplySubject
	if subject == "" {
		subject = c.config.ResultSubject
	}

	baseMsg := message.NewBaseMessage(ScheduleResultType, result, c.name)
	data, err := json.Marshal(baseMsg)
	if err != nil {
		return fmt.Errorf("marshal result message: %w", err)
	}

	js, err := c.natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}
	if _, err := js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish result to %s: %w", subject, err)
	}
	return nil
}

// outcomeFor maps a pipeline response to a metrics outcome label.
func outcomeFor(resp *schedule.Response) string {
	if resp.Success {
		return "success"
	}
	return "rejected"
}

// degradedStages extracts the degraded stage list from run metadata.
func degradedStages(resp *schedule.Response) []string {
	stages, _ := resp.Metadata["degraded_stages"].([]string)
	return stages
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "schedule-api",
		Type:        "processor",
		Description: "Runs scheduling requests through the constraint pipeline",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = component.Port{
			Name:        portDef.Name,
			Direction:   component.DirectionInput,
			Required:    portDef.Required,
			Description: portDef.Description,
			Config: component.NATSPort{
				Subject: portDef.Subject,
			},
		}
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = component.Port{
			Name:        portDef.Name,
			Direction:   component.DirectionOutput,
			Required:    portDef.Required,
			Description: portDef.Description,
			Config: component.NATSPort{
				Subject: portDef.Subject,
			},
		}
	}
	return ports
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return scheduleAPISchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	state := c.state.Load()
	running := state == stateRunning

	c.mu.RLock()
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	switch state {
	case stateStarting:
		status = "starting"
	case stateRunning:
		status = "running"
	case stateStopping:
		status = "stopping"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.runsFailed.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		LastActivity: c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
