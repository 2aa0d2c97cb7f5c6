package scheduleapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/rosterflow/laws"
	"github.com/c360studio/rosterflow/pipeline"
	"github.com/c360studio/rosterflow/schedule"
)

// newTestComponent builds a component with a deterministic pipeline and no
// NATS connection, enough for the HTTP surface.
func newTestComponent(t *testing.T) *Component {
	t.Helper()
	rules := laws.NewRegistry()
	return &Component{
		name:         "schedule-api",
		config:       DefaultConfig(),
		logger:       slog.Default(),
		orchestrator: pipeline.NewOrchestrator(nil, rules),
		lawRegistry:  rules,
		metrics:      newMetrics(),
	}
}

func testMux(t *testing.T) (*Component, *http.ServeMux) {
	t.Helper()
	c := newTestComponent(t)
	mux := http.NewServeMux()
	c.RegisterHTTPHandlers("/api/v1", mux)
	return c, mux
}

func generateBody(t *testing.T) string {
	t.Helper()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	trigger := ScheduleTrigger{
		RequestID: "req-1",
		Request: &schedule.Request{
			Employees: []schedule.Employee{
				{EmployeeID: 1, Name: "Ada", Certifications: []int{1}},
				{EmployeeID: 2, Name: "Grace", Certifications: []int{1}},
			},
			Tasks: []schedule.Task{
				{
					TaskID:                   1,
					Category:                 2,
					CustomerCapacity:         10,
					RequiredCapacityPerStaff: 5,
					RequiredCertifications:   []int{1},
					Start:                    day.Add(9 * time.Hour),
					End:                      day.Add(17 * time.Hour),
				},
			},
			Country: "US",
		},
	}
	data, err := json.Marshal(&trigger)
	if err != nil {
		t.Fatalf("marshal trigger: %v", err)
	}
	return string(data)
}

func TestHandleGenerate_Success(t *testing.T) {
	_, mux := testMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(generateBody(t)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "completed" || resp.RequestID != "req-1" {
		t.Errorf("response = %+v, want completed req-1", resp)
	}
	if resp.Response == nil || !resp.Response.Success {
		t.Errorf("schedule response = %+v, want success", resp.Response)
	}
	if len(resp.Response.Assignments) != 2 {
		t.Errorf("assignments = %d, want 2", len(resp.Response.Assignments))
	}
}

func TestHandleGenerate_BareRequestBody(t *testing.T) {
	_, mux := testMux(t)

	var trigger ScheduleTrigger
	if err := json.Unmarshal([]byte(generateBody(t)), &trigger); err != nil {
		t.Fatalf("unmarshal trigger: %v", err)
	}
	bare, err := json.Marshal(trigger.Request)
	if err != nil {
		t.Fatalf("marshal bare request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(string(bare)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGenerate_BadRequests(t *testing.T) {
	_, mux := testMux(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", "nope", http.StatusBadRequest},
		{"empty object", "{}", http.StatusBadRequest},
		{"no employees", `{"request": {"employees": [], "tasks": [{"task_id": 1}]}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleGenerate_MethodNotAllowed(t *testing.T) {
	_, mux := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/generate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	c, mux := testMux(t)
	c.state.Store(stateRunning)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if health.Status != "running" {
		t.Errorf("health status = %q, want running", health.Status)
	}
}

func TestHandleHealth_Unavailable(t *testing.T) {
	_, mux := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when stopped", rec.Code)
	}
}

func TestHandleCountries(t *testing.T) {
	_, mux := testMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/countries", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp CountriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal countries: %v", err)
	}
	if len(resp.Countries) < 8 {
		t.Errorf("countries = %v, want the built-in rule table", resp.Countries)
	}
}

func TestHandleMetrics(t *testing.T) {
	c, mux := testMux(t)
	c.metrics.recordRun("success", []string{"planning"}, 0.2)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "rosterflow_requests_total") {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
	if !strings.Contains(body, "rosterflow_advisory_fallbacks_total") {
		t.Errorf("metrics output missing fallback counter:\n%s", body)
	}
}
