package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	tfhttp "github.com/Strob0t/TaskForge/internal/adapter/http"
	"github.com/Strob0t/TaskForge/internal/adapter/inproc"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain/contract"
	"github.com/Strob0t/TaskForge/internal/resilience"
	"github.com/Strob0t/TaskForge/internal/service"
	"github.com/Strob0t/TaskForge/internal/worker"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := inproc.NewMux()
	for capability, h := range worker.Roster() {
		mux.Handle(capability, inproc.Handler(h))
	}

	foreman := service.NewForeman(contract.NewRegistry(), mux, config.Foreman{
		MaxParallel:  4,
		MaxRetries:   2,
		MaxPlanNodes: 10,
		TaskSLA:      time.Minute,
	})
	breaker := resilience.NewBreaker(5, 30*time.Second)
	handlers := tfhttp.NewHandlers(foreman, nil, breaker)

	r := chi.NewRouter()
	tfhttp.MountRoutes(r, handlers, nil)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitPipeline_Sequential(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"task_description": "audit and document the module",
		"plan": {
			"shape": "sequential",
			"nodes": [
				{"id": "a", "capability": "analyze", "input": {"task": "audit the module"}},
				{"id": "d", "capability": "document", "input": {"subject": "audit results"}}
			]
		}
	}`
	resp, err := http.Post(srv.URL+"/api/v1/pipelines", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res struct {
		RunID   string                     `json:"run_id"`
		Status  string                     `json:"status"`
		Outputs map[string]json.RawMessage `json:"outputs"`
		Summary string                     `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Status != "completed" {
		t.Fatalf("expected completed, got %s (summary %q)", res.Status, res.Summary)
	}
	if res.RunID == "" {
		t.Fatal("expected a run id")
	}
	if len(res.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(res.Outputs))
	}
}

func TestSubmitPipeline_BadPlanIs400(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"task_description": "do something",
		"plan": {
			"shape": "single",
			"nodes": [{"capability": "translate"}]
		}
	}`
	resp, err := http.Post(srv.URL+"/api/v1/pipelines", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitPipeline_MissingDescription(t *testing.T) {
	srv := newTestServer(t)

	body := `{"plan": {"shape": "single", "nodes": [{"capability": "analyze"}]}}`
	resp, err := http.Post(srv.URL+"/api/v1/pipelines", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitPipeline_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/pipelines", "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListCapabilities(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/capabilities")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res struct {
		Capabilities []struct {
			Capability   string   `json:"capability"`
			Discriminant string   `json:"discriminant"`
			Variants     []string `json:"variants"`
		} `json:"capabilities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Capabilities) != 5 {
		t.Fatalf("expected 5 capabilities, got %d", len(res.Capabilities))
	}
	if res.Capabilities[0].Capability != "analyze" || res.Capabilities[0].Discriminant != "report_type" {
		t.Fatalf("unexpected first capability %+v", res.Capabilities[0])
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var res map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res["status"] != "ok" {
		t.Fatalf("expected ok, got %v", res["status"])
	}
	if res["delegation_circuit"] != "closed" {
		t.Fatalf("expected closed circuit, got %v", res["delegation_circuit"])
	}
}

func TestGetPipeline_NoArchive(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/pipelines/run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501 without an archive, got %d", resp.StatusCode)
	}
}
