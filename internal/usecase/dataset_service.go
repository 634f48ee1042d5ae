package usecase

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/clublocker/internal/domain/match"
	"github.com/riskibarqy/clublocker/internal/domain/ranking"
	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
	"github.com/riskibarqy/clublocker/internal/platform/cache"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
)

// RecordFetcher sweeps the provider for one dataset at a time.
type RecordFetcher interface {
	FetchTournaments(ctx context.Context) (sweep.Result[tournament.Raw], error)
	FetchMatches(ctx context.Context, tournaments []tournament.Tournament, progress sweep.ProgressFunc) (sweep.Result[match.Raw], error)
	FetchRankings(ctx context.Context) (sweep.Result[ranking.Raw], error)
}

// Dataset is a normalized dataset with the report of the sweep that produced
// it. Report.Drops includes the records excluded by normalization.
type Dataset[T any] struct {
	Items     []T          `json:"items"`
	Report    sweep.Report `json:"report"`
	FromCache bool         `json:"from_cache"`
}

type Datasets struct {
	Tournaments Dataset[tournament.Tournament]
	Matches     Dataset[match.Match]
	Rankings    Dataset[ranking.Ranking]
}

// Reports returns the sweep reports keyed by dataset kind.
func (d Datasets) Reports() map[snapshot.Kind]sweep.Report {
	return map[snapshot.Kind]sweep.Report{
		snapshot.KindTournaments: d.Tournaments.Report,
		snapshot.KindMatches:     d.Matches.Report,
		snapshot.KindRankings:    d.Rankings.Report,
	}
}

type DatasetServiceConfig struct {
	DivisionLabels map[int]string
	// MemoTTL bounds how long normalized datasets stay in memory. The memo is
	// keyed by snapshot date, so a new day always reloads.
	MemoTTL time.Duration
	Now     func() time.Time
	Logger  *logging.Logger
}

// DatasetService loads the three datasets through the snapshot cache and
// normalizes them. Tournaments are always loaded before matches.
type DatasetService struct {
	fetcher RecordFetcher
	cache   *SnapshotCache
	memo    *cache.Store
	labels  map[int]string
	logger  *logging.Logger
}

func NewDatasetService(fetcher RecordFetcher, snapshots *SnapshotCache, cfg DatasetServiceConfig) *DatasetService {
	labels := cfg.DivisionLabels
	if len(labels) == 0 {
		labels = ranking.DefaultDivisionLabels()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &DatasetService{
		fetcher: fetcher,
		cache:   snapshots,
		memo:    cache.NewStoreWithClock(cfg.MemoTTL, cfg.Now),
		labels:  labels,
		logger:  logger.Named("dataset"),
	}
}

func (s *DatasetService) LoadTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	ds, err := s.Tournaments(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Items, nil
}

func (s *DatasetService) LoadMatches(ctx context.Context, tournaments []tournament.Tournament) ([]match.Match, error) {
	ds, err := s.Matches(ctx, tournaments, nil)
	if err != nil {
		return nil, err
	}
	return ds.Items, nil
}

func (s *DatasetService) LoadRankings(ctx context.Context) ([]ranking.Ranking, error) {
	ds, err := s.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Items, nil
}

func (s *DatasetService) Tournaments(ctx context.Context) (Dataset[tournament.Tournament], error) {
	return memoize(ctx, s, snapshot.KindTournaments, func(ctx context.Context) (Dataset[tournament.Tournament], error) {
		res, fromCache, err := getOrFetch(ctx, s.cache, snapshot.KindTournaments, s.fetcher.FetchTournaments)
		if err != nil {
			return Dataset[tournament.Tournament]{}, fetchError(err, snapshot.KindTournaments)
		}
		items, drops := tournament.Normalize(res.Records)
		return newDataset(items, res.Report, drops, fromCache), nil
	})
}

// Matches loads today's matches. tournaments is only consulted on a
// snapshot miss, to plan the per-date requests.
func (s *DatasetService) Matches(ctx context.Context, tournaments []tournament.Tournament, progress sweep.ProgressFunc) (Dataset[match.Match], error) {
	return memoize(ctx, s, snapshot.KindMatches, func(ctx context.Context) (Dataset[match.Match], error) {
		fetch := func(ctx context.Context) (sweep.Result[match.Raw], error) {
			return s.fetcher.FetchMatches(ctx, tournaments, progress)
		}
		res, fromCache, err := getOrFetch(ctx, s.cache, snapshot.KindMatches, fetch)
		if err != nil {
			return Dataset[match.Match]{}, fetchError(err, snapshot.KindMatches)
		}
		items, drops := match.Normalize(res.Records)
		return newDataset(items, res.Report, drops, fromCache), nil
	})
}

func (s *DatasetService) Rankings(ctx context.Context) (Dataset[ranking.Ranking], error) {
	return memoize(ctx, s, snapshot.KindRankings, func(ctx context.Context) (Dataset[ranking.Ranking], error) {
		res, fromCache, err := getOrFetch(ctx, s.cache, snapshot.KindRankings, s.fetcher.FetchRankings)
		if err != nil {
			return Dataset[ranking.Ranking]{}, fetchError(err, snapshot.KindRankings)
		}
		items := ranking.Normalize(res.Records, s.labels)
		return newDataset(items, res.Report, nil, fromCache), nil
	})
}

// LoadAll loads every dataset. Rankings are independent of tournaments and
// load concurrently with the tournament then match chain.
func (s *DatasetService) LoadAll(ctx context.Context, progress sweep.ProgressFunc) (Datasets, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DatasetService.LoadAll")
	defer span.End()

	var out Datasets
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		tournaments, err := s.Tournaments(ctx)
		if err != nil {
			return err
		}
		matches, err := s.Matches(ctx, tournaments.Items, progress)
		if err != nil {
			return err
		}
		out.Tournaments = tournaments
		out.Matches = matches
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rankings, err := s.Rankings(ctx)
		if err != nil {
			return err
		}
		out.Rankings = rankings
		return nil
	})
	if err := p.Wait(); err != nil {
		return Datasets{}, err
	}
	return out, nil
}

// Reports loads every dataset and returns its sweep reports.
func (s *DatasetService) Reports(ctx context.Context) (map[snapshot.Kind]sweep.Report, error) {
	all, err := s.LoadAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	return all.Reports(), nil
}

// Today is the snapshot date the service currently serves.
func (s *DatasetService) Today() string {
	return dayString(s.cache.Today())
}

// Purge drops the persisted snapshots for date and forgets the in-memory
// datasets of that day. An empty date means today.
func (s *DatasetService) Purge(ctx context.Context, date string) (int, error) {
	if date == "" {
		date = s.Today()
	}
	if !(snapshot.Key{Kind: snapshot.KindTournaments, Date: date}).Valid() {
		return 0, crerr.Wrapf(ErrInvalidInput, "invalid date %q", date)
	}
	removed, err := s.cache.Purge(ctx, date)
	if err != nil {
		return 0, err
	}
	forgotten := s.memo.DeleteFunc(ctx, func(key string) bool {
		return strings.HasSuffix(key, "_"+date)
	})
	s.logger.InfoContext(ctx, "dataset memo cleared", "date", date, "entries", forgotten)
	return removed, nil
}

func memoize[T any](
	ctx context.Context,
	s *DatasetService,
	kind snapshot.Kind,
	load func(context.Context) (Dataset[T], error),
) (Dataset[T], error) {
	key := s.cache.Key(kind).Name()
	value, err := s.memo.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		ctx, span := startDatasetSpan(ctx, kind)
		ds, err := load(ctx)
		summary := sweepSummary{fromCache: ds.FromCache, gaps: len(ds.Report.Gaps), dropped: ds.Report.Drops.Total()}
		endDatasetSpan(span, len(ds.Items), summary, err)
		if err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "dataset ready",
			"kind", kind,
			"items", len(ds.Items),
			"from_cache", summary.fromCache,
			"gaps", summary.gaps,
			"dropped", summary.dropped,
		)
		return ds, nil
	})
	if err != nil {
		return Dataset[T]{}, err
	}
	return value.(Dataset[T]), nil
}

func newDataset[T any](items []T, report sweep.Report, drops sweep.Drops, fromCache bool) Dataset[T] {
	merged := report
	merged.Drops = sweep.Drops{}
	merged.Drops.Merge(report.Drops)
	merged.Drops.Merge(drops)
	return Dataset[T]{Items: items, Report: merged, FromCache: fromCache}
}

func fetchError(err error, kind snapshot.Kind) error {
	if crerr.Is(err, context.Canceled) || crerr.Is(err, context.DeadlineExceeded) {
		return crerr.Wrapf(err, "load %s", kind)
	}
	return crerr.Mark(crerr.Wrapf(err, "load %s", kind), ErrDependencyUnavailable)
}
