package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/clublocker/internal/domain/ranking"
	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	snapshotmock "github.com/riskibarqy/clublocker/internal/mocks/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
)

func rankingFetch(calls *int) func(context.Context) (sweep.Result[ranking.Raw], error) {
	return func(context.Context) (sweep.Result[ranking.Raw], error) {
		*calls++
		return sweep.Result[ranking.Raw]{Records: rawRankings(), Report: sweep.NewReport("rankings", fixedNow)}, nil
	}
}

func TestSnapshotCache_CorruptSnapshotIsRefetchedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := snapshotmock.NewRepository(t)
	cache := NewSnapshotCache(repo, SnapshotCacheConfig{PersistPartial: true, Now: fixedClock, Logger: logging.NewNop()})
	key := snapshot.Key{Kind: snapshot.KindRankings, Date: "2026-10-15"}

	repo.
		On("Load", mock.Anything, key).
		Return(snapshot.Envelope{}, false, fmt.Errorf("%w: truncated", snapshot.ErrCorrupt)).
		Once()
	repo.
		On("Save", mock.Anything, mock.MatchedBy(func(e snapshot.Envelope) bool {
			return e.Key() == key && e.SchemaVersion == snapshot.SchemaVersion && e.FetchedAt.Equal(fixedNow)
		})).
		Return(nil).
		Once()

	calls := 0
	res, fromCache, err := getOrFetch(ctx, cache, snapshot.KindRankings, rankingFetch(&calls))
	if err != nil {
		t.Fatalf("get or fetch: %v", err)
	}
	if fromCache {
		t.Fatalf("corrupt snapshot must not be served")
	}
	if calls != 1 || len(res.Records) != 2 {
		t.Fatalf("unexpected fetch: calls=%d records=%d", calls, len(res.Records))
	}
}

func TestSnapshotCache_HitSkipsFetchUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := snapshotmock.NewRepository(t)
	cache := NewSnapshotCache(repo, SnapshotCacheConfig{Now: fixedClock, Logger: logging.NewNop()})
	key := snapshot.Key{Kind: snapshot.KindRankings, Date: "2026-10-15"}

	records, err := json.Marshal(rawRankings())
	if err != nil {
		t.Fatalf("marshal records: %v", err)
	}
	report := sweep.NewReport("rankings", fixedNow)
	report.Requests = 7
	repo.
		On("Load", mock.Anything, key).
		Return(snapshot.Envelope{SchemaVersion: snapshot.SchemaVersion, Kind: key.Kind, Date: key.Date, Report: report, Records: records}, true, nil).
		Once()

	calls := 0
	res, fromCache, err := getOrFetch(ctx, cache, snapshot.KindRankings, rankingFetch(&calls))
	if err != nil {
		t.Fatalf("get or fetch: %v", err)
	}
	if !fromCache || calls != 0 {
		t.Fatalf("expected snapshot hit without fetch, fromCache=%t calls=%d", fromCache, calls)
	}
	if res.Report.Requests != 7 || len(res.Records) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSnapshotCache_SaveFailureStillReturnsDataUsingMockery(t *testing.T) {
	t.Parallel()

	repo := snapshotmock.NewRepository(t)
	cache := NewSnapshotCache(repo, SnapshotCacheConfig{PersistPartial: true, Now: fixedClock, Logger: logging.NewNop()})

	repo.On("Load", mock.Anything, mock.Anything).Return(snapshot.Envelope{}, false, nil).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(fmt.Errorf("disk full")).Once()

	calls := 0
	res, _, err := getOrFetch(context.Background(), cache, snapshot.KindRankings, rankingFetch(&calls))
	if err != nil {
		t.Fatalf("save failure must not fail the load: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("unexpected records: %d", len(res.Records))
	}
}

func TestSnapshotCache_KeyFollowsConfiguredTimezone(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	repo := snapshotmock.NewRepository(t)
	now := func() time.Time { return time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC) }

	utc := NewSnapshotCache(repo, SnapshotCacheConfig{Now: now})
	local := NewSnapshotCache(repo, SnapshotCacheConfig{Now: now, Location: newYork})

	if got := utc.Key(snapshot.KindMatches).Name(); got != "matches_2026-10-15" {
		t.Fatalf("unexpected utc key %q", got)
	}
	if got := local.Key(snapshot.KindMatches).Name(); got != "matches_2026-10-14" {
		t.Fatalf("unexpected local key %q", got)
	}
}

func TestSnapshotCache_PurgeUsingMockery(t *testing.T) {
	t.Parallel()

	repo := snapshotmock.NewRepository(t)
	cache := NewSnapshotCache(repo, SnapshotCacheConfig{Now: fixedClock, Logger: logging.NewNop()})
	repo.On("PurgeDay", mock.Anything, "2026-10-15").Return(3, nil).Once()

	removed, err := cache.Purge(context.Background(), "2026-10-15")
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 3 {
		t.Fatalf("unexpected removed count %d", removed)
	}
}
