package scheduleapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/schedule"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 4 << 20 // 4 MB

// RegisterHTTPHandlers registers all schedule-api HTTP handlers under the
// given prefix. Handlers are registered as:
//
//	POST <prefix>/generate
//	GET  <prefix>/health
//	GET  <prefix>/countries
//	GET  <prefix>/metrics
func (c *Component) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	// Normalise: ensure leading slash and trailing slash.
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	mux.HandleFunc(prefix+"generate", c.handleGenerate)
	mux.HandleFunc(prefix+"health", c.handleHealth)
	mux.HandleFunc(prefix+"countries", c.handleCountries)
	mux.Handle(prefix+"metrics", c.metrics.handler())
}

// GenerateResponse is the response body for POST /generate.
type GenerateResponse struct {
	RequestID string             `json:"request_id,omitempty"`
	Status    string             `json:"status"`
	Response  *schedule.Response `json:"response,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// handleGenerate runs a scheduling request synchronously and returns the
// finished schedule.
func (c *Component) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var trigger ScheduleTrigger
	if err := json.Unmarshal(body, &trigger); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req := trigger.Request
	if req == nil {
		// Accept a bare schedule.Request body as well.
		var bare schedule.Request
		if err := json.Unmarshal(body, &bare); err != nil || len(bare.Tasks) == 0 {
			http.Error(w, "request is required", http.StatusBadRequest)
			return
		}
		req = &bare
	}

	ctx := r.Context()
	if trigger.TraceID != "" {
		ctx = llm.WithTraceContext(ctx, llm.TraceContext{TraceID: trigger.TraceID})
	}

	start := time.Now()
	resp, err := c.orchestrator.Run(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		c.runsFailed.Add(1)
		c.metrics.recordRun("failed", nil, elapsed.Seconds())
		status := http.StatusInternalServerError
		if schedule.IsRequestError(err) || schedule.IsConfigurationError(err) {
			status = http.StatusBadRequest
		}
		c.writeJSON(w, status, GenerateResponse{
			RequestID: trigger.RequestID,
			Status:    "failed",
			Error:     err.Error(),
		})
		return
	}

	c.schedulesGenerated.Add(1)
	c.metrics.recordRun(outcomeFor(resp), degradedStages(resp), elapsed.Seconds())

	c.writeJSON(w, http.StatusOK, GenerateResponse{
		RequestID: trigger.RequestID,
		Status:    "completed",
		Response:  resp,
	})
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status             string `json:"status"`
	RequestsProcessed  int64  `json:"requests_processed"`
	SchedulesGenerated int64  `json:"schedules_generated"`
	RunsFailed         int64  `json:"runs_failed"`
}

// handleHealth reports the component's lifecycle state and counters.
func (c *Component) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := c.Health()
	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}

	c.writeJSON(w, status, HealthResponse{
		Status:             health.Status,
		RequestsProcessed:  c.requestsProcessed.Load(),
		SchedulesGenerated: c.schedulesGenerated.Load(),
		RunsFailed:         c.runsFailed.Load(),
	})
}

// CountriesResponse is the response body for GET /countries.
type CountriesResponse struct {
	Countries []string `json:"countries"`
}

// handleCountries lists the country codes with labor-law rules defined.
func (c *Component) handleCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.writeJSON(w, http.StatusOK, CountriesResponse{
		Countries: c.lawRegistry.Countries(),
	})
}

// writeJSON marshals v as JSON and writes it to w with the given status code.
func (c *Component) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.Error("Failed to encode HTTP response", "error", err)
	}
}
