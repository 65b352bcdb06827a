package vacancies

import "context"

// Store persists imported vacancies and serves salary aggregations over them.
type Store interface {
	Upsert(ctx context.Context, list []Vacancy) (int, error)
	Stats(ctx context.Context, filter StatsFilter) (SalaryStats, error)
	GroupedStats(ctx context.Context, groupBy string, filter StatsFilter) ([]GroupStats, error)
	Close() error
}
