// Package main implements a mock advisory oracle for offline testing.
// It serves OpenAI-compatible /v1/chat/completions responses so the
// scheduling pipeline can run without a real LLM. Requests are routed to a
// pipeline stage (plan, suggestions, validation, review) by inspecting the
// system prompt, and each stage answers from a fixture.
//
// Usage:
//
//	mock-oracle -fixtures /path/to/fixtures -port 11434
//
// Fixture files are JSON named by stage ("plan.json", "suggestions.json",
// "validation.json", "review.json"). Stages without a fixture file fall back
// to built-in responses that produce a healthy run.
//
// Sequential fixtures: if numbered files exist ("review.1.json",
// "review.2.json"), the Nth call to that stage returns the Nth fixture, and
// the base "review.json" repeats once the sequence is exhausted. This
// supports testing rejection and recovery paths.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Stage names, matching the pipeline's advisory calls.
const (
	stagePlan        = "plan"
	stageSuggestions = "suggestions"
	stageValidation  = "validation"
	stageReview      = "review"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type server struct {
	fixtures map[string][]string // stage → ordered fixture contents
	calls    atomic.Int64

	mu         sync.Mutex
	stageCalls map[string]int
}

func newServer(fixtures map[string][]string) *server {
	return &server{
		fixtures:   fixtures,
		stageCalls: make(map[string]int),
	}
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory containing stage fixture files (optional)")
	port := flag.Int("port", 11434, "port to listen on")
	flag.Parse()

	if envDir := os.Getenv("MOCK_ORACLE_FIXTURES"); envDir != "" && *fixtureDir == "" {
		*fixtureDir = envDir
	}

	fixtures := make(map[string][]string)
	if *fixtureDir != "" {
		loaded, err := loadFixtures(*fixtureDir)
		if err != nil {
			log.Fatalf("Failed to load fixtures from %s: %v", *fixtureDir, err)
		}
		fixtures = loaded
		for stage, seq := range fixtures {
			log.Printf("  stage: %s (%d fixture(s))", stage, len(seq))
		}
	}
	log.Printf("Stages without fixtures use built-in responses")

	s := newServer(fixtures)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock oracle listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	stage := stageFor(req.Messages)
	callNum := s.calls.Add(1)

	content := s.contentFor(stage)
	log.Printf("[call %d] model=%s stage=%s bytes=%d", callNum, req.Model, stage, len(content))

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index: 0,
				Message: chatMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleStats returns per-stage call counts for test assertions.
func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	callsByStage := make(map[string]int, len(s.stageCalls))
	for stage, n := range s.stageCalls {
		callsByStage[stage] = n
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_calls":    s.calls.Load(),
		"calls_by_stage": callsByStage,
	})
}

// contentFor picks the response body for a stage, advancing its sequential
// fixture position.
func (s *server) contentFor(stage string) string {
	s.mu.Lock()
	index := s.stageCalls[stage]
	s.stageCalls[stage] = index + 1
	s.mu.Unlock()

	seq, ok := s.fixtures[stage]
	if !ok || len(seq) == 0 {
		return builtinResponse(stage)
	}
	if index >= len(seq) {
		index = len(seq) - 1
	}
	return seq[index]
}

// stageFor classifies a request by its system prompt. The pipeline's prompts
// identify themselves in the first sentence.
func stageFor(messages []chatMessage) string {
	var system string
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			break
		}
	}

	switch {
	case strings.Contains(system, "scheduling planner"):
		return stagePlan
	case strings.Contains(system, "scheduling assistant"):
		return stageSuggestions
	case strings.Contains(system, "compliance analyst"):
		return stageValidation
	case strings.Contains(system, "quality reviewer"):
		return stageReview
	default:
		return stageReview
	}
}

// builtinResponse returns a canned answer that keeps a run on the happy path.
func builtinResponse(stage string) string {
	switch stage {
	case stagePlan:
		return `{
  "strategy": "validate constraints, then allocate by fairness",
  "estimated_complexity": "low",
  "steps": [
    {"step_number": 1, "description": "check labor-law compliance", "tool": "lawyer", "parameters": {"scope": "validate_all"}},
    {"step_number": 2, "description": "allocate staff to tasks", "tool": "scheduler", "parameters": {"optimize_for": "balance"}}
  ]
}`
	case stageSuggestions:
		return `[]`
	case stageValidation:
		return `{"is_valid": true, "violations": [], "warnings": [], "suggestions": []}`
	default:
		return `{"approved": true, "quality_score": 0.9, "issues": [], "improvements": []}`
	}
}

// numberedFileRe matches files like "review.1.json", "plan.2.json".
var numberedFileRe = regexp.MustCompile(`^(.+)\.(\d+)\.json$`)

// loadFixtures reads JSON files from dir and returns a map of stage name to
// ordered content sequence. Numbered files come first in numeric order, with
// the base file appended as the repeating fallback.
func loadFixtures(dir string) (map[string][]string, error) {
	baseFiles := make(map[string]string)
	numberedFiles := make(map[string]map[int]string)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixture dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON in %s", entry.Name())
		}

		if matches := numberedFileRe.FindStringSubmatch(entry.Name()); matches != nil {
			stage := matches[1]
			index, _ := strconv.Atoi(matches[2])
			if numberedFiles[stage] == nil {
				numberedFiles[stage] = make(map[int]string)
			}
			numberedFiles[stage][index] = string(data)
			continue
		}

		stage := strings.TrimSuffix(entry.Name(), ".json")
		baseFiles[stage] = string(data)
	}

	fixtures := make(map[string][]string)
	allStages := make(map[string]bool)
	for s := range baseFiles {
		allStages[s] = true
	}
	for s := range numberedFiles {
		allStages[s] = true
	}

	for stage := range allStages {
		var seq []string

		if numbered, ok := numberedFiles[stage]; ok {
			indices := make([]int, 0, len(numbered))
			for idx := range numbered {
				indices = append(indices, idx)
			}
			sort.Ints(indices)
			for _, idx := range indices {
				seq = append(seq, numbered[idx])
			}
		}

		if base, ok := baseFiles[stage]; ok {
			seq = append(seq, base)
		}

		if len(seq) > 0 {
			fixtures[stage] = seq
		}
	}

	return fixtures, nil
}
