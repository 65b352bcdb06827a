package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeJobsAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/vacancies", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"found": 2,
			"pages": 1,
			"items": []map[string]any{
				{
					"id":   "v-1",
					"name": "Go Developer",
					"area": map[string]any{"name": "Moscow"},
					"salary": map[string]any{
						"from": 150000, "to": 250000, "currency": "RUR",
					},
					"experience":         map[string]any{"name": "1-3 years"},
					"professional_roles": []map[string]any{{"name": "Developer"}},
					"employer":           map[string]any{"name": "Acme"},
					"published_at":       "2026-08-01T12:00:00+0300",
				},
				{
					"id":         "v-2",
					"name":       "QA Engineer",
					"area":       map[string]any{"name": "Moscow"},
					"experience": map[string]any{"name": "No experience"},
					"professional_roles": []map[string]any{
						{"name": "QA Engineer"},
					},
				},
			},
		})
	})
	mux.HandleFunc("/vacancies/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":         strings.TrimPrefix(r.URL.Path, "/vacancies/"),
			"key_skills": []map[string]any{{"name": "Go"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVacancyImportAndStats(t *testing.T) {
	jobs := fakeJobsAPI(t)
	ts := newTestServer(t, jobs.URL)

	res, payload := postJSON(t, ts.URL+"/v1/vacancies/import", map[string]any{
		"queries": []string{"go developer"},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d (%+v)", res.StatusCode, payload)
	}
	if payload["imported"] != float64(2) {
		t.Fatalf("imported = %v, want 2", payload["imported"])
	}

	res, stats := getJSON(t, ts.URL+"/v1/vacancies/stats")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d (%+v)", res.StatusCode, stats)
	}
	if stats["count"] != float64(2) || stats["with_salary"] != float64(1) {
		t.Fatalf("stats = %+v", stats)
	}
	if stats["average_middle"] != float64(200000) {
		t.Fatalf("average_middle = %v, want 200000", stats["average_middle"])
	}

	res, filtered := getJSON(t, ts.URL+"/v1/vacancies/stats?query=go")
	if res.StatusCode != http.StatusOK || filtered["count"] != float64(1) {
		t.Fatalf("filtered stats = %d %+v", res.StatusCode, filtered)
	}
}

func TestVacancyImportDump(t *testing.T) {
	// A pre-collected dump imports without touching the live source.
	ts := newTestServer(t, "http://127.0.0.1:1")

	from := 100000
	res, payload := postJSON(t, ts.URL+"/v1/vacancies/import", map[string]any{
		"vacancies": []map[string]any{
			{
				"id":              "dump-1",
				"name":            "Data Engineer",
				"salary_from":     from,
				"salary_currency": "RUR",
				"experience":      "3-6 years",
			},
		},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("dump import status = %d (%+v)", res.StatusCode, payload)
	}
	if payload["imported"] != float64(1) {
		t.Fatalf("imported = %v, want 1", payload["imported"])
	}

	res, stats := getJSON(t, ts.URL+"/v1/vacancies/stats")
	if res.StatusCode != http.StatusOK || stats["count"] != float64(1) {
		t.Fatalf("stats after dump import = %d %+v", res.StatusCode, stats)
	}
}

func TestVacancyGroupStats(t *testing.T) {
	jobs := fakeJobsAPI(t)
	ts := newTestServer(t, jobs.URL)

	if res, payload := postJSON(t, ts.URL+"/v1/vacancies/import", map[string]any{
		"queries": []string{"go developer"},
	}); res.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d (%+v)", res.StatusCode, payload)
	}

	res, payload := getJSON(t, ts.URL+"/v1/vacancies/stats/groups?group_by=experience")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("groups status = %d (%+v)", res.StatusCode, payload)
	}
	groups, ok := payload["groups"].([]any)
	if !ok || len(groups) != 2 {
		t.Fatalf("groups = %v, want 2 buckets", payload["groups"])
	}

	res, _ = getJSON(t, ts.URL+"/v1/vacancies/stats/groups?group_by=salary")
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid group_by status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestVacancyImportValidation(t *testing.T) {
	ts := newTestServer(t, "http://127.0.0.1:1")

	res, _ := postJSON(t, ts.URL+"/v1/vacancies/import", map[string]any{"queries": []string{" "}})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty queries status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	res, _ = postJSON(t, ts.URL+"/v1/vacancies/import", map[string]any{"queries": []string{"go"}})
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unreachable source status = %d, want %d", res.StatusCode, http.StatusServiceUnavailable)
	}
}
