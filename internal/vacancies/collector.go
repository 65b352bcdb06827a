package vacancies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrSourceUnavailable marks transport-level failures of the jobs API.
var ErrSourceUnavailable = errors.New("vacancy source unavailable")

const (
	collectorUserAgent = "profvibe/1.0 (career-explorer)"
	publishedAtLayout  = "2006-01-02T15:04:05-0700"
)

// Collector pulls vacancies from the HeadHunter-style REST API. Requests are
// paced with a shared ticker so the public rate limit is respected across
// list and detail calls.
type Collector struct {
	baseURL  string
	areaID   int
	perQuery int
	interval time.Duration
	client   *http.Client
}

func NewCollector(baseURL string, areaID, perQuery int, requestsPerSec float64) *Collector {
	if requestsPerSec <= 0 {
		requestsPerSec = 10
	}
	if perQuery <= 0 {
		perQuery = 10
	}
	return &Collector{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		areaID:   areaID,
		perQuery: perQuery,
		interval: time.Duration(float64(time.Second) / requestsPerSec),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type hhListResponse struct {
	Items []hhVacancy `json:"items"`
	Found int         `json:"found"`
	Pages int         `json:"pages"`
}

type hhNamed struct {
	Name string `json:"name"`
}

type hhSalary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
	Gross    *bool  `json:"gross"`
}

type hhSnippet struct {
	Requirement    string `json:"requirement"`
	Responsibility string `json:"responsibility"`
}

type hhVacancy struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Area              hhNamed   `json:"area"`
	Salary            *hhSalary `json:"salary"`
	Experience        hhNamed   `json:"experience"`
	Schedule          hhNamed   `json:"schedule"`
	Employment        hhNamed   `json:"employment"`
	ProfessionalRoles []hhNamed `json:"professional_roles"`
	Employer          hhNamed   `json:"employer"`
	PublishedAt       string    `json:"published_at"`
	Snippet           hhSnippet `json:"snippet"`
	AlternateURL      string    `json:"alternate_url"`
	KeySkills         []hhNamed `json:"key_skills"`
}

// Collect fetches one page of vacancies per query plus a detail request per
// vacancy for key skills. A failed detail request drops the skills, not the
// vacancy; a failed list request aborts the run.
func (c *Collector) Collect(ctx context.Context, queries []string) ([]Vacancy, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	seen := make(map[string]bool)
	out := make([]Vacancy, 0, len(queries)*c.perQuery)
	for _, query := range queries {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		if err := pace(ctx, ticker); err != nil {
			return nil, err
		}
		page, err := c.searchPage(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true

			v := vacancyFromItem(item)
			if err := pace(ctx, ticker); err != nil {
				return nil, err
			}
			if skills, err := c.fetchKeySkills(ctx, item.ID); err == nil {
				v.KeySkills = skills
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *Collector) searchPage(ctx context.Context, query string) (hhListResponse, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("area", strconv.Itoa(c.areaID))
	params.Set("per_page", strconv.Itoa(c.perQuery))
	params.Set("page", "0")

	var page hhListResponse
	if err := c.getJSON(ctx, c.baseURL+"/vacancies?"+params.Encode(), &page); err != nil {
		return hhListResponse{}, fmt.Errorf("search %q: %w", query, err)
	}
	return page, nil
}

func (c *Collector) fetchKeySkills(ctx context.Context, id string) ([]string, error) {
	var detail hhVacancy
	if err := c.getJSON(ctx, c.baseURL+"/vacancies/"+id, &detail); err != nil {
		return nil, err
	}
	skills := make([]string, 0, len(detail.KeySkills))
	for _, s := range detail.KeySkills {
		if s.Name != "" {
			skills = append(skills, s.Name)
		}
	}
	return skills, nil
}

func (c *Collector) getJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", collectorUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func vacancyFromItem(item hhVacancy) Vacancy {
	v := Vacancy{
		ID:             item.ID,
		Name:           item.Name,
		AreaName:       item.Area.Name,
		Experience:     item.Experience.Name,
		Schedule:       item.Schedule.Name,
		Employment:     item.Employment.Name,
		EmployerName:   item.Employer.Name,
		Requirement:    item.Snippet.Requirement,
		Responsibility: item.Snippet.Responsibility,
		URL:            item.AlternateURL,
	}
	if item.Salary != nil {
		v.SalaryFrom = item.Salary.From
		v.SalaryTo = item.Salary.To
		v.SalaryCurrency = item.Salary.Currency
		v.SalaryGross = item.Salary.Gross
	}
	for _, role := range item.ProfessionalRoles {
		if role.Name != "" {
			v.ProfessionalRoles = append(v.ProfessionalRoles, role.Name)
		}
	}
	if ts, err := time.Parse(publishedAtLayout, item.PublishedAt); err == nil {
		v.PublishedAt = ts.UTC()
	} else if ts, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
		v.PublishedAt = ts.UTC()
	}
	return v
}

func pace(ctx context.Context, ticker *time.Ticker) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}
