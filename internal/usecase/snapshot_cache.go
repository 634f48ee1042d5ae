package usecase

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
)

type SnapshotCacheConfig struct {
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	// PersistPartial controls whether sweeps with gaps are written.
	PersistPartial bool
	Now            func() time.Time
	Logger         *logging.Logger
}

// SnapshotCache serves each dataset from today's snapshot, fetching and
// persisting it on a miss. Concurrent callers for the same key share one
// load.
type SnapshotCache struct {
	repo           snapshot.Repository
	location       *time.Location
	persistPartial bool
	now            func() time.Time
	logger         *logging.Logger
	flight         singleflight.Group
}

func NewSnapshotCache(repo snapshot.Repository, cfg SnapshotCacheConfig) *SnapshotCache {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotCache{
		repo:           repo,
		location:       location,
		persistPartial: cfg.PersistPartial,
		now:            now,
		logger:         logger.Named("snapshot"),
	}
}

// Today is the current calendar day in the configured location.
func (c *SnapshotCache) Today() time.Time {
	t := c.now().In(c.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *SnapshotCache) Key(kind snapshot.Kind) snapshot.Key {
	return snapshot.NewKey(kind, c.Today())
}

// Purge removes every snapshot stored for date.
func (c *SnapshotCache) Purge(ctx context.Context, date string) (int, error) {
	removed, err := c.repo.PurgeDay(ctx, date)
	if err != nil {
		return removed, crerr.Wrapf(err, "purge snapshots for %s", date)
	}
	c.logger.InfoContext(ctx, "snapshots purged", "date", date, "removed", removed)
	return removed, nil
}

type cachedResult[T any] struct {
	result    sweep.Result[T]
	fromCache bool
}

// getOrFetch returns today's snapshot of kind, or runs fetch and persists
// its result. A snapshot that cannot be read is logged and refetched.
func getOrFetch[T any](
	ctx context.Context,
	c *SnapshotCache,
	kind snapshot.Kind,
	fetch func(context.Context) (sweep.Result[T], error),
) (sweep.Result[T], bool, error) {
	key := c.Key(kind)
	value, err, _ := c.flight.Do(key.Name(), func() (any, error) {
		if res, ok := loadSnapshot[T](ctx, c, key); ok {
			return cachedResult[T]{result: res, fromCache: true}, nil
		}

		c.logger.InfoContext(ctx, "snapshot miss, fetching", "snapshot", key.Name())
		res, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		storeSnapshot(ctx, c, key, res)
		return cachedResult[T]{result: res}, nil
	})
	if err != nil {
		return sweep.Result[T]{}, false, err
	}
	out := value.(cachedResult[T])
	return out.result, out.fromCache, nil
}

func loadSnapshot[T any](ctx context.Context, c *SnapshotCache, key snapshot.Key) (sweep.Result[T], bool) {
	envelope, found, err := c.repo.Load(ctx, key)
	if err != nil {
		if crerr.Is(err, snapshot.ErrCorrupt) {
			c.logger.WarnContext(ctx, "snapshot corrupt, treating as miss", "snapshot", key.Name(), "error", err)
		} else {
			c.logger.WarnContext(ctx, "snapshot read failed, treating as miss", "snapshot", key.Name(), "error", err)
		}
		return sweep.Result[T]{}, false
	}
	if !found {
		return sweep.Result[T]{}, false
	}

	var records []T
	if err := sonic.Unmarshal(envelope.Records, &records); err != nil {
		c.logger.WarnContext(ctx, "snapshot records undecodable, treating as miss", "snapshot", key.Name(), "error", err)
		return sweep.Result[T]{}, false
	}
	c.logger.DebugContext(ctx, "snapshot hit", "snapshot", key.Name(), "records", len(records))
	return sweep.Result[T]{Records: records, Report: envelope.Report}, true
}

// storeSnapshot never fails the load: the fetched data is still returned
// when persisting it does not work.
func storeSnapshot[T any](ctx context.Context, c *SnapshotCache, key snapshot.Key, res sweep.Result[T]) {
	if !res.Report.Complete() && !c.persistPartial {
		c.logger.WarnContext(ctx, "partial sweep not persisted",
			"snapshot", key.Name(),
			"gaps", len(res.Report.Gaps),
		)
		return
	}

	records, err := sonic.Marshal(res.Records)
	if err != nil {
		c.logger.ErrorContext(ctx, "encode snapshot records failed", "snapshot", key.Name(), "error", err)
		return
	}
	envelope := snapshot.Envelope{
		SchemaVersion: snapshot.SchemaVersion,
		Kind:          key.Kind,
		Date:          key.Date,
		FetchedAt:     c.now().UTC(),
		Report:        res.Report,
		Records:       records,
	}
	if err := c.repo.Save(ctx, envelope); err != nil {
		c.logger.ErrorContext(ctx, "persist snapshot failed", "snapshot", key.Name(), "error", err)
		return
	}
	c.logger.InfoContext(ctx, "snapshot persisted",
		"snapshot", key.Name(),
		"records", len(res.Records),
		"complete", res.Report.Complete(),
	)
}

// dayString formats t as a snapshot date.
func dayString(t time.Time) string {
	return t.Format(calendar.DateLayout)
}
