package dialogue

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrRevisionConflict = errors.New("session revision conflict")
)

// Store persists sessions. Save commits only against the revision the caller
// loaded and bumps it on success, so two concurrent transitions on one
// session cannot silently overwrite each other.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Close() error
}
