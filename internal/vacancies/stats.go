package vacancies

import (
	"fmt"
	"sort"
	"strings"
)

// statsCurrency is the only currency aggregated; postings quoting anything
// else still count toward Count but stay out of the averages.
const statsCurrency = "RUR"

// ComputeStats aggregates salary bounds over a vacancy set.
func ComputeStats(list []Vacancy) SalaryStats {
	stats := SalaryStats{Count: len(list), Currency: statsCurrency}

	var (
		fromSum, toSum, middleSum       float64
		fromCount, toCount, middleCount int
	)
	for _, v := range list {
		if !salaryCountable(v) {
			continue
		}
		stats.WithSalary++
		if v.SalaryFrom != nil {
			fromSum += float64(*v.SalaryFrom)
			fromCount++
		}
		if v.SalaryTo != nil {
			toSum += float64(*v.SalaryTo)
			toCount++
		}
		if mid, ok := middleSalary(v); ok {
			middleSum += mid
			middleCount++
		}
	}
	if fromCount > 0 {
		stats.AverageFrom = fromSum / float64(fromCount)
	}
	if toCount > 0 {
		stats.AverageTo = toSum / float64(toCount)
	}
	if middleCount > 0 {
		stats.AverageMiddle = middleSum / float64(middleCount)
	}
	return stats
}

// ComputeGroupStats splits the set along the given axis and aggregates each
// bucket. Group keys come back sorted for stable output.
func ComputeGroupStats(list []Vacancy, groupBy string) ([]GroupStats, error) {
	buckets := make(map[string][]Vacancy)
	switch groupBy {
	case GroupByExperience:
		for _, v := range list {
			key := v.Experience
			if key == "" {
				key = "unspecified"
			}
			buckets[key] = append(buckets[key], v)
		}
	case GroupByProfessionalRole:
		for _, v := range list {
			if len(v.ProfessionalRoles) == 0 {
				buckets["unspecified"] = append(buckets["unspecified"], v)
				continue
			}
			for _, role := range v.ProfessionalRoles {
				buckets[role] = append(buckets[role], v)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported group_by %q", groupBy)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]GroupStats, 0, len(keys))
	for _, key := range keys {
		out = append(out, GroupStats{Key: key, Stats: ComputeStats(buckets[key])})
	}
	return out, nil
}

// FilterVacancies applies a stats filter in memory.
func FilterVacancies(list []Vacancy, filter StatsFilter) []Vacancy {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	experience := strings.TrimSpace(filter.Experience)

	out := make([]Vacancy, 0, len(list))
	for _, v := range list {
		if query != "" && !strings.Contains(strings.ToLower(v.Name), query) {
			continue
		}
		if experience != "" && v.Experience != experience {
			continue
		}
		out = append(out, v)
	}
	return out
}

func salaryCountable(v Vacancy) bool {
	if v.SalaryFrom == nil && v.SalaryTo == nil {
		return false
	}
	return v.SalaryCurrency == "" || v.SalaryCurrency == statsCurrency
}

func middleSalary(v Vacancy) (float64, bool) {
	switch {
	case v.SalaryFrom != nil && v.SalaryTo != nil:
		return (float64(*v.SalaryFrom) + float64(*v.SalaryTo)) / 2, true
	case v.SalaryFrom != nil:
		return float64(*v.SalaryFrom), true
	case v.SalaryTo != nil:
		return float64(*v.SalaryTo), true
	default:
		return 0, false
	}
}
