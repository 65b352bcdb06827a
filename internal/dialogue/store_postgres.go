package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akozyrev/profvibe/internal/profile"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSessionSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreWithPool shares an existing pool, so the dialogue and
// vacancy stores can ride one connection set.
func NewPostgresStoreWithPool(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if err := initSessionSchema(ctx, pool); err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSessionSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dialogue_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			stage TEXT NOT NULL,
			status TEXT NOT NULL,
			initial_message TEXT NOT NULL,
			identified_profession TEXT NOT NULL DEFAULT '',
			alternatives JSONB NOT NULL DEFAULT '[]',
			history JSONB NOT NULL DEFAULT '[]',
			result JSONB NULL,
			revision BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_dialogue_sessions_user_created ON dialogue_sessions (user_id, created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init session schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	if sess.Revision == 0 {
		sess.Revision = 1
	}
	alternatives, history, result, err := marshalSessionJSON(sess)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO dialogue_sessions (
			id, user_id, stage, status, initial_message, identified_profession,
			alternatives, history, result, revision, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		sess.ID,
		sess.UserID,
		string(sess.Stage),
		string(sess.Status),
		sess.InitialMessage,
		sess.IdentifiedProfession,
		alternatives,
		history,
		result,
		sess.Revision,
		sess.CreatedAt,
		sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, stage, status, initial_message, identified_profession,
		        alternatives, history, result, revision, created_at, updated_at
		   FROM dialogue_sessions WHERE id=$1`,
		id,
	)
	sess, err := scanSessionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Save commits the session only if the stored revision still matches the one
// the caller loaded. A concurrent transition that committed first makes this
// update match zero rows, which we report as ErrRevisionConflict.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	alternatives, history, result, err := marshalSessionJSON(sess)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE dialogue_sessions SET
			user_id=$3,
			stage=$4,
			status=$5,
			initial_message=$6,
			identified_profession=$7,
			alternatives=$8,
			history=$9,
			result=$10,
			revision=revision+1,
			updated_at=NOW()
		 WHERE id=$1 AND revision=$2`,
		sess.ID,
		sess.Revision,
		sess.UserID,
		string(sess.Stage),
		string(sess.Status),
		sess.InitialMessage,
		sess.IdentifiedProfession,
		alternatives,
		history,
		result,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM dialogue_sessions WHERE id=$1)`, sess.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check session existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrRevisionConflict
	}
	sess.Revision++
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func marshalSessionJSON(sess *Session) (alternatives, history, result []byte, err error) {
	alternatives, err = json.Marshal(stringsOrEmpty(sess.Alternatives))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal alternatives: %w", err)
	}
	qa := sess.History
	if qa == nil {
		qa = []profile.QA{}
	}
	history, err = json.Marshal(qa)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal history: %w", err)
	}
	if sess.Result != nil {
		result, err = json.Marshal(sess.Result)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal result: %w", err)
		}
	}
	return alternatives, history, result, nil
}

func stringsOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func scanSessionRow(row pgx.Row) (*Session, error) {
	var (
		sess         Session
		stage        string
		status       string
		alternatives []byte
		history      []byte
		result       []byte
	)
	if err := row.Scan(
		&sess.ID,
		&sess.UserID,
		&stage,
		&status,
		&sess.InitialMessage,
		&sess.IdentifiedProfession,
		&alternatives,
		&history,
		&result,
		&sess.Revision,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sess.Stage = Stage(stage)
	sess.Status = Status(status)
	if err := json.Unmarshal(alternatives, &sess.Alternatives); err != nil {
		return nil, fmt.Errorf("unmarshal alternatives: %w", err)
	}
	if err := json.Unmarshal(history, &sess.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if len(result) > 0 {
		var p profile.Profile
		if err := json.Unmarshal(result, &p); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		sess.Result = &p
	}
	if len(sess.Alternatives) == 0 {
		sess.Alternatives = nil
	}
	return &sess, nil
}
