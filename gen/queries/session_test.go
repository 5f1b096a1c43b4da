package queries_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/golden-vcr/server-common/querytest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fitplate/dashboard/gen/queries"
)

func Test_UpsertSession(t *testing.T) {
	if os.Getenv("PGHOST") == "" {
		t.Skip("PGHOST is not set; skipping database tests")
	}
	tx := querytest.PrepareTx(t)
	q := queries.New(tx)

	// We should start with no session records
	querytest.AssertCount(t, tx, 0, "SELECT COUNT(*) FROM dashboard.session")

	// Logging in writes all three fields at once
	sessionId := uuid.New()
	err := q.UpsertSession(context.Background(), queries.UpsertSessionParams{
		SessionID:    sessionId,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Role:         "ADMIN",
	})
	assert.NoError(t, err)
	querytest.AssertCount(t, tx, 1, `
		SELECT COUNT(*) FROM dashboard.session
			WHERE access_token = 'access-1' AND refresh_token = 'refresh-1' AND role = 'ADMIN'
	`)

	// Logging in again with the same session replaces the existing record
	err = q.UpsertSession(context.Background(), queries.UpsertSessionParams{
		SessionID:    sessionId,
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		Role:         "USER",
	})
	assert.NoError(t, err)
	querytest.AssertCount(t, tx, 1, "SELECT COUNT(*) FROM dashboard.session")

	row, err := q.GetSession(context.Background(), sessionId)
	assert.NoError(t, err)
	assert.Equal(t, "access-2", row.AccessToken)
	assert.Equal(t, "refresh-2", row.RefreshToken)
	assert.Equal(t, "USER", row.Role)
}

func Test_ClearSessionAccessToken(t *testing.T) {
	if os.Getenv("PGHOST") == "" {
		t.Skip("PGHOST is not set; skipping database tests")
	}
	tx := querytest.PrepareTx(t)
	q := queries.New(tx)

	sessionId := uuid.New()
	err := q.UpsertSession(context.Background(), queries.UpsertSessionParams{
		SessionID:    sessionId,
		AccessToken:  "access",
		RefreshToken: "refresh",
		Role:         "USER",
	})
	assert.NoError(t, err)

	// Clearing the access token leaves the rest of the record intact
	res, err := q.ClearSessionAccessToken(context.Background(), sessionId)
	assert.NoError(t, err)
	assertRowsAffected(t, res, 1)
	querytest.AssertCount(t, tx, 1, `
		SELECT COUNT(*) FROM dashboard.session
			WHERE access_token = '' AND refresh_token = 'refresh' AND role = 'USER'
	`)

	counts, err := q.CountSessions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), counts.Total)
	assert.Equal(t, int64(0), counts.Authenticated)

	// Deleting is reported as a change only if the record exists
	res, err = q.DeleteSession(context.Background(), sessionId)
	assert.NoError(t, err)
	assertRowsAffected(t, res, 1)
	res, err = q.DeleteSession(context.Background(), sessionId)
	assert.NoError(t, err)
	assertRowsAffected(t, res, 0)
}

func Test_TouchSession(t *testing.T) {
	if os.Getenv("PGHOST") == "" {
		t.Skip("PGHOST is not set; skipping database tests")
	}
	tx := querytest.PrepareTx(t)
	q := queries.New(tx)

	sessionId := uuid.New()
	err := q.UpsertSession(context.Background(), queries.UpsertSessionParams{
		SessionID:    sessionId,
		AccessToken:  "access",
		RefreshToken: "refresh",
		Role:         "USER",
	})
	assert.NoError(t, err)

	// A session written recently is not touched again
	res, err := q.TouchSession(context.Background(), sessionId)
	assert.NoError(t, err)
	assertRowsAffected(t, res, 0)

	// A session last seen two hours ago is touched, and so survives a purge of
	// sessions idle for more than an hour
	_, err = tx.Exec("UPDATE dashboard.session SET updated_at = now() - interval '2 hours'")
	assert.NoError(t, err)
	res, err = q.TouchSession(context.Background(), sessionId)
	assert.NoError(t, err)
	assertRowsAffected(t, res, 1)
	res, err = q.PurgeIdleSessions(context.Background(), 1)
	assert.NoError(t, err)
	assertRowsAffected(t, res, 0)

	// Without a touch, it's purged
	_, err = tx.Exec("UPDATE dashboard.session SET updated_at = now() - interval '2 hours'")
	assert.NoError(t, err)
	res, err = q.PurgeIdleSessions(context.Background(), 1)
	assert.NoError(t, err)
	assertRowsAffected(t, res, 1)
}

func assertRowsAffected(t *testing.T, res sql.Result, want int64) {
	n, err := res.RowsAffected()
	assert.NoError(t, err)
	assert.Equal(t, want, n)
}
