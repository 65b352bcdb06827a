package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akozyrev/profvibe/internal/vacancies"
)

type importVacanciesRequest struct {
	Queries []string `json:"queries,omitempty"`
	// Vacancies carries a pre-collected dump (the vibecollect output) to
	// import directly, skipping the live source.
	Vacancies []vacancies.Vacancy `json:"vacancies,omitempty"`
}

type importVacanciesResponse struct {
	Imported int `json:"imported"`
}

func (s *Server) handleImportVacancies(w http.ResponseWriter, r *http.Request) {
	var req importVacanciesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	list := req.Vacancies
	if len(list) == 0 {
		queries := make([]string, 0, len(req.Queries))
		for _, q := range req.Queries {
			if q = strings.TrimSpace(q); q != "" {
				queries = append(queries, q)
			}
		}
		if len(queries) == 0 {
			respondError(w, http.StatusBadRequest, "invalid_queries",
				"either search queries or a vacancies dump is required")
			return
		}

		var err error
		list, err = s.collector.Collect(r.Context(), queries)
		if err != nil {
			if errors.Is(err, vacancies.ErrSourceUnavailable) {
				respondError(w, http.StatusServiceUnavailable, "source_unavailable", err.Error())
				return
			}
			respondError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
	}

	imported, err := s.vacancyStore.Upsert(r.Context(), list)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	s.metrics.VacanciesImported.Add(float64(imported))
	respondJSON(w, http.StatusOK, importVacanciesResponse{Imported: imported})
}

func (s *Server) handleVacancyStats(w http.ResponseWriter, r *http.Request) {
	filter := statsFilterFromQuery(r)
	stats, err := s.vacancyStore.Stats(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleVacancyStatsPlain renders the aggregate as readable text for quick
// terminal checks.
func (s *Server) handleVacancyStatsPlain(w http.ResponseWriter, r *http.Request) {
	stats, err := s.vacancyStore.Stats(r.Context(), statsFilterFromQuery(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "vacancies: %d\n", stats.Count)
	fmt.Fprintf(w, "with salary: %d\n", stats.WithSalary)
	fmt.Fprintf(w, "average from: %.0f %s\n", stats.AverageFrom, stats.Currency)
	fmt.Fprintf(w, "average to: %.0f %s\n", stats.AverageTo, stats.Currency)
	fmt.Fprintf(w, "average middle: %.0f %s\n", stats.AverageMiddle, stats.Currency)
}

func (s *Server) handleVacancyGroupStats(w http.ResponseWriter, r *http.Request) {
	groupBy := strings.TrimSpace(r.URL.Query().Get("group_by"))
	if groupBy == "" {
		groupBy = vacancies.GroupByExperience
	}
	if groupBy != vacancies.GroupByExperience && groupBy != vacancies.GroupByProfessionalRole {
		respondError(w, http.StatusBadRequest, "invalid_group_by",
			"group_by must be experience or professional_role")
		return
	}
	groups, err := s.vacancyStore.GroupedStats(r.Context(), groupBy, statsFilterFromQuery(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"group_by": groupBy, "groups": groups})
}

func statsFilterFromQuery(r *http.Request) vacancies.StatsFilter {
	return vacancies.StatsFilter{
		Query:      strings.TrimSpace(r.URL.Query().Get("query")),
		Experience: strings.TrimSpace(r.URL.Query().Get("experience")),
	}
}
