package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/akozyrev/profvibe/internal/config"
	"github.com/akozyrev/profvibe/internal/dialogue"
	"github.com/akozyrev/profvibe/internal/imagegen"
	"github.com/akozyrev/profvibe/internal/llmgen"
	"github.com/akozyrev/profvibe/internal/observability"
	"github.com/akozyrev/profvibe/internal/vacancies"
)

const (
	minStartMessageLen = 5
	maxStartMessageLen = 500
	minAnswerLen       = 1
	maxAnswerLen       = 200

	healthProbeTimeout = 2 * time.Second
)

type Server struct {
	cfg          config.Config
	machine      *dialogue.Machine
	hub          *dialogue.ProgressHub
	gen          llmgen.Generator
	images       imagegen.Client
	vacancyStore vacancies.Store
	collector    *vacancies.Collector
	metrics      *observability.Metrics
	provider     string
	storeMode    string
	upgrader     websocket.Upgrader
	static       http.Handler
}

func New(
	cfg config.Config,
	machine *dialogue.Machine,
	hub *dialogue.ProgressHub,
	gen llmgen.Generator,
	images imagegen.Client,
	vacancyStore vacancies.Store,
	collector *vacancies.Collector,
	metrics *observability.Metrics,
	provider string,
	storeMode string,
) *Server {
	return &Server{
		cfg:          cfg,
		machine:      machine,
		hub:          hub,
		gen:          gen,
		images:       images,
		vacancyStore: vacancyStore,
		collector:    collector,
		metrics:      metrics,
		provider:     provider,
		storeMode:    storeMode,
		static:       newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/career/start", s.handleStartCareer)
	r.Post("/v1/career/answer", s.handleAnswer)
	r.Get("/v1/career/session/{id}", s.handleGetSession)
	r.Get("/v1/career/session/{id}/progress", s.handleProgressWS)

	r.Post("/v1/images", s.handleGenerateImages)

	r.Post("/v1/vacancies/import", s.handleImportVacancies)
	r.Get("/v1/vacancies/stats", s.handleVacancyStats)
	r.Get("/v1/vacancies/stats/plain", s.handleVacancyStatsPlain)
	r.Get("/v1/vacancies/stats/groups", s.handleVacancyGroupStats)

	return r
}

// handleHealth probes the generation backend with a minimal prompt. A failing
// backend degrades the report but does not flip the status code: the process
// itself is alive and sessions in other stages still work.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	generation := "ok"
	if _, err := s.gen.Generate(ctx, llmgen.GenerateRequest{Prompt: "ping", MaxTokens: 1}, nil); err != nil {
		generation = "degraded"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"generation": generation,
		"provider":   s.provider,
		"store_mode": s.storeMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
