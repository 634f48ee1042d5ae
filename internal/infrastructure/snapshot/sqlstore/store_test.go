package sqlstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store := NewStore(db)
	require.NoError(t, store.CreateSchema(context.Background()))
	return store
}

func envelopeFor(kind snapshot.Kind, date, records string) snapshot.Envelope {
	fetchedAt := time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC)
	report := sweep.NewReport(string(kind), fetchedAt)
	report.Requests = 2
	report.Drops.Add(sweep.DropMalformed, 1)
	return snapshot.Envelope{
		SchemaVersion: snapshot.SchemaVersion,
		Kind:          kind,
		Date:          date,
		FetchedAt:     fetchedAt,
		Report:        report,
		Records:       json.RawMessage(records),
	}
}

func TestStore_RoundTripAllKinds(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, kind := range snapshot.Kinds {
		env := envelopeFor(kind, "2026-10-15", `[{"kind":"`+string(kind)+`"}]`)
		require.NoError(t, store.Save(ctx, env))

		got, found, err := store.Load(ctx, env.Key())
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, kind, got.Kind)
		assert.Equal(t, 1, got.Report.Drops[sweep.DropMalformed])
		assert.JSONEq(t, string(env.Records), string(got.Records))
	}
}

func TestStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, envelopeFor(snapshot.KindMatches, "2026-10-15", `[1]`)))
	require.NoError(t, store.Save(ctx, envelopeFor(snapshot.KindMatches, "2026-10-15", `[1,2]`)))

	got, found, err := store.Load(ctx, snapshot.Key{Kind: snapshot.KindMatches, Date: "2026-10-15"})
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[1,2]`, string(got.Records))

	var count int
	require.NoError(t, store.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM snapshots"))
	assert.Equal(t, 1, count)
}

func TestStore_LoadMissAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := snapshot.Key{Kind: snapshot.KindRankings, Date: "2026-10-15"}

	_, found, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = store.db.ExecContext(ctx,
		"INSERT INTO snapshots (kind, snapshot_date, schema_version, fetched_at, payload) VALUES (?, ?, ?, ?, ?)",
		"rankings", "2026-10-15", snapshot.SchemaVersion, time.Now().UTC(), `{"schema_version":1,`)
	require.NoError(t, err)

	_, found, err = store.Load(ctx, key)
	require.Error(t, err)
	assert.False(t, found)
	assert.True(t, crerr.Is(err, snapshot.ErrCorrupt))
}

func TestStore_PurgeDay(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, kind := range snapshot.Kinds {
		require.NoError(t, store.Save(ctx, envelopeFor(kind, "2026-10-15", `[]`)))
	}
	require.NoError(t, store.Save(ctx, envelopeFor(snapshot.KindMatches, "2026-10-14", `[]`)))

	removed, err := store.PurgeDay(ctx, "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	_, found, err := store.Load(ctx, snapshot.Key{Kind: snapshot.KindMatches, Date: "2026-10-14"})
	require.NoError(t, err)
	assert.True(t, found)

	_, err = store.PurgeDay(ctx, "")
	assert.Error(t, err)
}
