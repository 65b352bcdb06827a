package vacancies

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initVacancySchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreWithPool shares an existing pool, so the dialogue and
// vacancy stores can ride one connection set.
func NewPostgresStoreWithPool(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if err := initVacancySchema(ctx, pool); err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initVacancySchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vacancies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			area_name TEXT NOT NULL DEFAULT '',
			salary_from INTEGER NULL,
			salary_to INTEGER NULL,
			salary_currency TEXT NOT NULL DEFAULT '',
			salary_gross BOOLEAN NULL,
			experience TEXT NOT NULL DEFAULT '',
			schedule TEXT NOT NULL DEFAULT '',
			employment TEXT NOT NULL DEFAULT '',
			professional_roles JSONB NOT NULL DEFAULT '[]',
			employer_name TEXT NOT NULL DEFAULT '',
			published_at TIMESTAMPTZ NULL,
			key_skills JSONB NOT NULL DEFAULT '[]',
			requirement TEXT NOT NULL DEFAULT '',
			responsibility TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_vacancies_experience ON vacancies (experience);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init vacancy schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, list []Vacancy) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, v := range list {
		roles, err := json.Marshal(stringsOrEmptyList(v.ProfessionalRoles))
		if err != nil {
			return 0, fmt.Errorf("marshal roles: %w", err)
		}
		skills, err := json.Marshal(stringsOrEmptyList(v.KeySkills))
		if err != nil {
			return 0, fmt.Errorf("marshal skills: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO vacancies (
				id, name, area_name, salary_from, salary_to, salary_currency, salary_gross,
				experience, schedule, employment, professional_roles, employer_name,
				published_at, key_skills, requirement, responsibility, url
			) VALUES (
				$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
			)
			ON CONFLICT (id) DO UPDATE SET
				name=EXCLUDED.name,
				area_name=EXCLUDED.area_name,
				salary_from=EXCLUDED.salary_from,
				salary_to=EXCLUDED.salary_to,
				salary_currency=EXCLUDED.salary_currency,
				salary_gross=EXCLUDED.salary_gross,
				experience=EXCLUDED.experience,
				schedule=EXCLUDED.schedule,
				employment=EXCLUDED.employment,
				professional_roles=EXCLUDED.professional_roles,
				employer_name=EXCLUDED.employer_name,
				published_at=EXCLUDED.published_at,
				key_skills=EXCLUDED.key_skills,
				requirement=EXCLUDED.requirement,
				responsibility=EXCLUDED.responsibility,
				url=EXCLUDED.url`,
			v.ID,
			v.Name,
			v.AreaName,
			v.SalaryFrom,
			v.SalaryTo,
			v.SalaryCurrency,
			v.SalaryGross,
			v.Experience,
			v.Schedule,
			v.Employment,
			roles,
			v.EmployerName,
			nullableTime(v),
			skills,
			v.Requirement,
			v.Responsibility,
			v.URL,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert vacancy %s: %w", v.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return len(list), nil
}

// Stats and GroupedStats load the filtered rows and aggregate in process so
// both stores share one aggregation path. Grouping by professional role would
// not map onto plain GROUP BY anyway since one vacancy carries several roles.
func (s *PostgresStore) Stats(ctx context.Context, filter StatsFilter) (SalaryStats, error) {
	list, err := s.load(ctx, filter)
	if err != nil {
		return SalaryStats{}, err
	}
	return ComputeStats(list), nil
}

func (s *PostgresStore) GroupedStats(ctx context.Context, groupBy string, filter StatsFilter) ([]GroupStats, error) {
	list, err := s.load(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ComputeGroupStats(list, groupBy)
}

func (s *PostgresStore) load(ctx context.Context, filter StatsFilter) ([]Vacancy, error) {
	query := `SELECT id, name, area_name, salary_from, salary_to, salary_currency, salary_gross,
	                 experience, schedule, employment, professional_roles, employer_name,
	                 published_at, key_skills, requirement, responsibility, url
	            FROM vacancies WHERE 1=1`
	args := []any{}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if exp := strings.TrimSpace(filter.Experience); exp != "" {
		args = append(args, exp)
		query += fmt.Sprintf(" AND experience = $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load vacancies: %w", err)
	}
	defer rows.Close()

	out := make([]Vacancy, 0, 64)
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vacancy: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vacancy rows: %w", err)
	}
	return out, nil
}

func scanVacancy(rows pgx.Rows) (Vacancy, error) {
	var (
		v           Vacancy
		roles       []byte
		skills      []byte
		publishedAt *time.Time
	)
	if err := rows.Scan(
		&v.ID,
		&v.Name,
		&v.AreaName,
		&v.SalaryFrom,
		&v.SalaryTo,
		&v.SalaryCurrency,
		&v.SalaryGross,
		&v.Experience,
		&v.Schedule,
		&v.Employment,
		&roles,
		&v.EmployerName,
		&publishedAt,
		&skills,
		&v.Requirement,
		&v.Responsibility,
		&v.URL,
	); err != nil {
		return Vacancy{}, err
	}
	if publishedAt != nil {
		v.PublishedAt = *publishedAt
	}
	if err := json.Unmarshal(roles, &v.ProfessionalRoles); err != nil {
		return Vacancy{}, fmt.Errorf("unmarshal roles: %w", err)
	}
	if err := json.Unmarshal(skills, &v.KeySkills); err != nil {
		return Vacancy{}, fmt.Errorf("unmarshal skills: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func stringsOrEmptyList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nullableTime(v Vacancy) *time.Time {
	if v.PublishedAt.IsZero() {
		return nil
	}
	t := v.PublishedAt
	return &t
}

