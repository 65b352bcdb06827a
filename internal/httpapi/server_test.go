package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akozyrev/profvibe/internal/config"
	"github.com/akozyrev/profvibe/internal/dialogue"
	"github.com/akozyrev/profvibe/internal/imagegen"
	"github.com/akozyrev/profvibe/internal/llmgen"
	"github.com/akozyrev/profvibe/internal/observability"
	"github.com/akozyrev/profvibe/internal/profile"
	"github.com/akozyrev/profvibe/internal/vacancies"
)

// Shared across tests so the prometheus default registry sees each collector
// once.
var testMetrics = observability.NewMetrics("httpapi_test")

func newTestServer(t *testing.T, jobsURL string) *httptest.Server {
	t.Helper()
	return newTestServerWithGenerator(t, jobsURL, llmgen.NewMockGenerator())
}

func newTestServerWithGenerator(t *testing.T, jobsURL string, gen llmgen.Generator) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		GenerationProvider: "mock",
		MaxDetailQuestions: 3,
		ProgressInterval:   time.Millisecond,
	}
	synth := profile.NewSynthesizer(gen, cfg.ProgressInterval)
	hub := dialogue.NewProgressHub()
	machine := dialogue.NewMachine(dialogue.NewMemoryStore(), synth, hub, testMetrics, cfg.MaxDetailQuestions)
	collector := vacancies.NewCollector(jobsURL, 113, 10, 1000)

	srv := New(cfg, machine, hub, gen, imagegen.NewMockClient(), vacancies.NewMemoryStore(), collector, testMetrics, "mock", "in-memory")
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

// downGenerator simulates an unreachable generation backend.
type downGenerator struct{}

func (downGenerator) Generate(context.Context, llmgen.GenerateRequest, llmgen.DeltaHandler) (string, error) {
	return "", llmgen.ErrUnavailable
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	defer res.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer res.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res, decoded
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, "http://127.0.0.1:1")

	res, payload := getJSON(t, ts.URL+"/healthz")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if payload["status"] != "ok" || payload["generation"] != "ok" {
		t.Fatalf("healthz payload = %+v", payload)
	}
	if payload["provider"] != "mock" {
		t.Fatalf("provider = %v, want mock", payload["provider"])
	}
	if payload["store_mode"] != "in-memory" {
		t.Fatalf("store_mode = %v", payload["store_mode"])
	}

	res, payload = getJSON(t, ts.URL+"/readyz")
	if res.StatusCode != http.StatusOK || payload["status"] != "ready" {
		t.Fatalf("readyz = %d %+v", res.StatusCode, payload)
	}
}

func TestHealthDegradedWhenBackendDown(t *testing.T) {
	ts := newTestServerWithGenerator(t, "http://127.0.0.1:1", downGenerator{})

	res, payload := getJSON(t, ts.URL+"/healthz")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if payload["status"] != "ok" || payload["generation"] != "degraded" {
		t.Fatalf("healthz payload = %+v", payload)
	}
}

func TestUIRoutes(t *testing.T) {
	ts := newTestServer(t, "http://127.0.0.1:1")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	rootRes, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer rootRes.Body.Close()
	if rootRes.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("GET / status = %d, want %d", rootRes.StatusCode, http.StatusTemporaryRedirect)
	}
	if got := rootRes.Header.Get("Location"); got != "/ui/" {
		t.Fatalf("GET / location = %q, want %q", got, "/ui/")
	}

	uiRes, err := http.Get(ts.URL + "/ui/")
	if err != nil {
		t.Fatalf("GET /ui/ error = %v", err)
	}
	defer uiRes.Body.Close()
	if uiRes.StatusCode != http.StatusOK {
		t.Fatalf("GET /ui/ status = %d, want %d", uiRes.StatusCode, http.StatusOK)
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(uiRes.Body); err != nil {
		t.Fatalf("reading /ui/ body failed: %v", err)
	}
	if !strings.Contains(body.String(), "ProfVibe") {
		t.Fatalf("GET /ui/ body missing expected content")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, "http://127.0.0.1:1")

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d, want %d", res.StatusCode, http.StatusOK)
	}
}

func TestGenerateImages(t *testing.T) {
	ts := newTestServer(t, "http://127.0.0.1:1")

	res, payload := postJSON(t, ts.URL+"/v1/images", map[string]any{
		"prompts": []string{"sound engineer at a mixing desk", "sound engineer on stage"},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d (%+v)", res.StatusCode, http.StatusOK, payload)
	}
	urls, ok := payload["urls"].([]any)
	if !ok || len(urls) != 2 {
		t.Fatalf("urls = %+v, want 2 entries", payload["urls"])
	}
	for i, u := range urls {
		if u == "" {
			t.Fatalf("urls[%d] is empty", i)
		}
	}

	res, _ = postJSON(t, ts.URL+"/v1/images", map[string]any{"prompts": []string{"  "}})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank prompts status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}
