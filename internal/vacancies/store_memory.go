package vacancies

import (
	"context"
	"sync"
)

// MemoryStore keeps vacancies in process memory, for DB-less deployments and
// tests.
type MemoryStore struct {
	mu        sync.RWMutex
	vacancies map[string]Vacancy
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vacancies: make(map[string]Vacancy)}
}

func (s *MemoryStore) Upsert(ctx context.Context, list []Vacancy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range list {
		s.vacancies[v.ID] = v
	}
	return len(list), nil
}

func (s *MemoryStore) Stats(ctx context.Context, filter StatsFilter) (SalaryStats, error) {
	return ComputeStats(FilterVacancies(s.snapshot(), filter)), nil
}

func (s *MemoryStore) GroupedStats(ctx context.Context, groupBy string, filter StatsFilter) ([]GroupStats, error) {
	return ComputeGroupStats(FilterVacancies(s.snapshot(), filter), groupBy)
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) snapshot() []Vacancy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Vacancy, 0, len(s.vacancies))
	for _, v := range s.vacancies {
		out = append(out, v)
	}
	return out
}
