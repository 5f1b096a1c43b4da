package session

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fitplate/dashboard/gen/queries"
	"github.com/fitplate/dashboard/internal/roles"
)

func Test_postgresStore(t *testing.T) {
	q := &mockQueries{rows: make(map[uuid.UUID]queries.GetSessionRow)}
	s := &postgresStore{q: q, ping: func(ctx context.Context) error { return nil }}
	id := uuid.New()

	got, err := s.Get(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, Session{}, got)

	err = s.Put(context.Background(), id, Session{AccessToken: "a", RefreshToken: "r", Role: roles.User})
	assert.NoError(t, err)
	got, err = s.Get(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, Session{AccessToken: "a", RefreshToken: "r", Role: roles.User}, got)

	assert.NoError(t, s.ClearAccessToken(context.Background(), id))
	got, err = s.Get(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, Session{RefreshToken: "r", Role: roles.User}, got)

	assert.NoError(t, s.Delete(context.Background(), id))
	got, err = s.Get(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, Session{}, got)

	assert.NoError(t, s.Ping(context.Background()))
}

func Test_postgresStore_Get_error(t *testing.T) {
	q := &mockQueries{err: fmt.Errorf("connection reset")}
	s := &postgresStore{q: q}

	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "failed to get session")
}

func Test_postgresStore_Get_touches_existing_sessions(t *testing.T) {
	q := &mockQueries{rows: make(map[uuid.UUID]queries.GetSessionRow)}
	s := &postgresStore{q: q}
	known := uuid.New()
	unknown := uuid.New()
	assert.NoError(t, s.Put(context.Background(), known, Session{AccessToken: "a", Role: roles.User}))

	_, err := s.Get(context.Background(), known)
	assert.NoError(t, err)
	_, err = s.Get(context.Background(), unknown)
	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{known}, q.touched)

	q.touchErr = fmt.Errorf("connection reset")
	_, err = s.Get(context.Background(), known)
	assert.ErrorContains(t, err, "failed to touch session")
}

type mockQueries struct {
	rows     map[uuid.UUID]queries.GetSessionRow
	touched  []uuid.UUID
	err      error
	touchErr error
}

func (m *mockQueries) GetSession(ctx context.Context, sessionID uuid.UUID) (queries.GetSessionRow, error) {
	if m.err != nil {
		return queries.GetSessionRow{}, m.err
	}
	row, ok := m.rows[sessionID]
	if !ok {
		return queries.GetSessionRow{}, sql.ErrNoRows
	}
	return row, nil
}

func (m *mockQueries) UpsertSession(ctx context.Context, arg queries.UpsertSessionParams) error {
	m.rows[arg.SessionID] = queries.GetSessionRow{
		AccessToken:  arg.AccessToken,
		RefreshToken: arg.RefreshToken,
		Role:         arg.Role,
	}
	return nil
}

func (m *mockQueries) ClearSessionAccessToken(ctx context.Context, sessionID uuid.UUID) (sql.Result, error) {
	if row, ok := m.rows[sessionID]; ok {
		row.AccessToken = ""
		m.rows[sessionID] = row
	}
	return nil, nil
}

func (m *mockQueries) DeleteSession(ctx context.Context, sessionID uuid.UUID) (sql.Result, error) {
	delete(m.rows, sessionID)
	return nil, nil
}

func (m *mockQueries) TouchSession(ctx context.Context, sessionID uuid.UUID) (sql.Result, error) {
	if m.touchErr != nil {
		return nil, m.touchErr
	}
	m.touched = append(m.touched, sessionID)
	return nil, nil
}

var _ Queries = (*mockQueries)(nil)
