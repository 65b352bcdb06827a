package vacancies

import "time"

// Vacancy is the essential slice of a job-board posting kept for salary
// analytics.
type Vacancy struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	AreaName          string    `json:"area_name"`
	SalaryFrom        *int      `json:"salary_from,omitempty"`
	SalaryTo          *int      `json:"salary_to,omitempty"`
	SalaryCurrency    string    `json:"salary_currency,omitempty"`
	SalaryGross       *bool     `json:"salary_gross,omitempty"`
	Experience        string    `json:"experience"`
	Schedule          string    `json:"schedule"`
	Employment        string    `json:"employment"`
	ProfessionalRoles []string  `json:"professional_roles"`
	EmployerName      string    `json:"employer_name"`
	PublishedAt       time.Time `json:"published_at"`
	KeySkills         []string  `json:"key_skills,omitempty"`
	Requirement       string    `json:"requirement,omitempty"`
	Responsibility    string    `json:"responsibility,omitempty"`
	URL               string    `json:"url"`
}

// SalaryStats aggregates the salary bounds of a vacancy set. Averages cover
// only vacancies that state the corresponding bound in the dominant currency.
type SalaryStats struct {
	Count         int     `json:"count"`
	WithSalary    int     `json:"with_salary"`
	AverageFrom   float64 `json:"average_from"`
	AverageTo     float64 `json:"average_to"`
	AverageMiddle float64 `json:"average_middle"`
	Currency      string  `json:"currency"`
}

// GroupStats is SalaryStats for one grouping key, e.g. one experience bracket.
type GroupStats struct {
	Key   string      `json:"key"`
	Stats SalaryStats `json:"stats"`
}

// StatsFilter narrows which vacancies participate in an aggregation.
type StatsFilter struct {
	Query      string
	Experience string
}

// Grouping axes accepted by grouped statistics.
const (
	GroupByExperience       = "experience"
	GroupByProfessionalRole = "professional_role"
)
