package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fitplate/dashboard/gen/queries"
	"github.com/fitplate/dashboard/internal/roles"
)

// Queries represents the subset of database functionality required to persist
// sessions
type Queries interface {
	GetSession(ctx context.Context, sessionID uuid.UUID) (queries.GetSessionRow, error)
	UpsertSession(ctx context.Context, arg queries.UpsertSessionParams) error
	ClearSessionAccessToken(ctx context.Context, sessionID uuid.UUID) (sql.Result, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) (sql.Result, error)
	TouchSession(ctx context.Context, sessionID uuid.UUID) (sql.Result, error)
}

type postgresStore struct {
	q    Queries
	ping func(ctx context.Context) error
}

// NewPostgresStore returns a Store backed by the dashboard.session table
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{
		q:    queries.New(db),
		ping: db.PingContext,
	}
}

func (s *postgresStore) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	row, err := s.q.GetSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	// Reads count as activity, so a session in use is never purged as idle. The
	// timestamp moves at most once an hour.
	if _, err := s.q.TouchSession(ctx, id); err != nil {
		return Session{}, fmt.Errorf("failed to touch session: %w", err)
	}
	return Session{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		Role:         roles.Role(row.Role),
	}, nil
}

func (s *postgresStore) Put(ctx context.Context, id uuid.UUID, sess Session) error {
	if err := s.q.UpsertSession(ctx, queries.UpsertSessionParams{
		SessionID:    id,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Role:         string(sess.Role),
	}); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *postgresStore) ClearAccessToken(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.ClearSessionAccessToken(ctx, id); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

var _ Store = (*postgresStore)(nil)
