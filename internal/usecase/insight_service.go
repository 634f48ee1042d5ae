package usecase

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/match"
	"github.com/riskibarqy/clublocker/internal/domain/ranking"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
)

const (
	HeatmapTournaments = "tournaments"
	HeatmapWeekdays    = "weekdays"

	DefaultStatsLimit = 10
	MaxStatsLimit     = 500
)

// DatasetLoader is implemented by DatasetService.
type DatasetLoader interface {
	Tournaments(ctx context.Context) (Dataset[tournament.Tournament], error)
	Matches(ctx context.Context, tournaments []tournament.Tournament, progress sweep.ProgressFunc) (Dataset[match.Match], error)
	Rankings(ctx context.Context) (Dataset[ranking.Ranking], error)
	Today() string
}

// DatasetSummary is the banner line of one dataset: how many records and
// the date range they span.
type DatasetSummary struct {
	Count     int        `json:"count"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Complete  bool       `json:"complete"`
	Gaps      int        `json:"gaps"`
	Dropped   int        `json:"dropped"`
	FromCache bool       `json:"from_cache"`
}

type Summary struct {
	Date        string         `json:"date"`
	Tournaments DatasetSummary `json:"tournaments"`
	Matches     DatasetSummary `json:"matches"`
	Rankings    DatasetSummary `json:"rankings"`
}

// InsightService answers the read questions asked of the datasets.
type InsightService struct {
	datasets DatasetLoader
}

func NewInsightService(datasets DatasetLoader) *InsightService {
	return &InsightService{datasets: datasets}
}

func (s *InsightService) Summary(ctx context.Context) (Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InsightService.Summary")
	defer span.End()

	tournaments, matches, err := s.tournamentsAndMatches(ctx)
	if err != nil {
		return Summary{}, err
	}
	rankings, err := s.datasets.Rankings(ctx)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Date:        s.datasets.Today(),
		Tournaments: summarize(tournaments, func(t tournament.Tournament) time.Time { return t.StartDate }),
		Matches:     summarize(matches, func(m match.Match) time.Time { return m.MatchDate }),
		Rankings:    summarize[ranking.Ranking](rankings, nil),
	}, nil
}

func (s *InsightService) Tournaments(ctx context.Context) ([]tournament.Tournament, error) {
	ds, err := s.datasets.Tournaments(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Items, nil
}

func (s *InsightService) Matches(ctx context.Context) ([]match.Match, error) {
	_, matches, err := s.tournamentsAndMatches(ctx)
	if err != nil {
		return nil, err
	}
	return matches.Items, nil
}

// Rankings returns every ranking row, or only the rows of one division
// label when division is set.
func (s *InsightService) Rankings(ctx context.Context, division string) ([]ranking.Ranking, error) {
	ds, err := s.datasets.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	division = strings.TrimSpace(division)
	if division == "" {
		return ds.Items, nil
	}
	for label, items := range ranking.ByDivision(ds.Items) {
		if strings.EqualFold(label, division) {
			return items, nil
		}
	}
	return nil, crerr.Wrapf(ErrNotFound, "division %q", division)
}

func (s *InsightService) TournamentMatches(ctx context.Context, tournamentID int64) (tournament.Tournament, []match.Match, error) {
	if tournamentID <= 0 {
		return tournament.Tournament{}, nil, crerr.Wrapf(ErrInvalidInput, "tournament id must be > 0")
	}
	tournaments, matches, err := s.tournamentsAndMatches(ctx)
	if err != nil {
		return tournament.Tournament{}, nil, err
	}
	found, ok := tournament.FindByID(tournaments.Items, tournamentID)
	if !ok {
		return tournament.Tournament{}, nil, crerr.Wrapf(ErrNotFound, "tournament %d", tournamentID)
	}
	return found, match.TournamentMatches(matches.Items, tournamentID), nil
}

func (s *InsightService) PlayerNames(ctx context.Context) ([]string, error) {
	matches, err := s.Matches(ctx)
	if err != nil {
		return nil, err
	}
	return match.PlayerNames(matches), nil
}

func (s *InsightService) PlayerMatches(ctx context.Context, query string) ([]match.PlayerResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, crerr.Wrapf(ErrInvalidInput, "player name is required")
	}
	matches, err := s.Matches(ctx)
	if err != nil {
		return nil, err
	}
	return match.PlayerMatches(matches, query), nil
}

func (s *InsightService) ActivePlayers(ctx context.Context, limit int) ([]match.PlayerActivity, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	matches, err := s.Matches(ctx)
	if err != nil {
		return nil, err
	}
	return match.MostActivePlayers(matches, limit), nil
}

func (s *InsightService) Matchups(ctx context.Context, limit int) ([]match.Matchup, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	matches, err := s.Matches(ctx)
	if err != nil {
		return nil, err
	}
	return match.MostCommonMatchups(matches, limit), nil
}

func (s *InsightService) Rivalries(ctx context.Context, limit int) ([]match.Rivalry, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	matches, err := s.Matches(ctx)
	if err != nil {
		return nil, err
	}
	return match.Rivalries(matches, limit), nil
}

// Heatmap builds the tournament (year x month, summed match counts) or the
// match weekday (weekday x month, match counts) heatmap.
func (s *InsightService) Heatmap(ctx context.Context, kind string) (*calendar.Heatmap, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case HeatmapTournaments:
		tournaments, err := s.Tournaments(ctx)
		if err != nil {
			return nil, err
		}
		return tournament.MatchesHeatmap(tournaments), nil
	case HeatmapWeekdays:
		matches, err := s.Matches(ctx)
		if err != nil {
			return nil, err
		}
		return match.WeekdayHeatmap(matches), nil
	default:
		return nil, crerr.Wrapf(ErrInvalidInput, "unknown heatmap %q", kind)
	}
}

func (s *InsightService) tournamentsAndMatches(ctx context.Context) (Dataset[tournament.Tournament], Dataset[match.Match], error) {
	tournaments, err := s.datasets.Tournaments(ctx)
	if err != nil {
		return Dataset[tournament.Tournament]{}, Dataset[match.Match]{}, err
	}
	matches, err := s.datasets.Matches(ctx, tournaments.Items, nil)
	if err != nil {
		return Dataset[tournament.Tournament]{}, Dataset[match.Match]{}, err
	}
	return tournaments, matches, nil
}

func checkLimit(limit int) error {
	if limit < 0 || limit > MaxStatsLimit {
		return crerr.Wrapf(ErrInvalidInput, "limit must be between 0 and %d", MaxStatsLimit)
	}
	return nil
}

func summarize[T any](ds Dataset[T], dateOf func(T) time.Time) DatasetSummary {
	out := DatasetSummary{
		Count:     len(ds.Items),
		Complete:  ds.Report.Complete(),
		Gaps:      len(ds.Report.Gaps),
		Dropped:   ds.Report.Drops.Total(),
		FromCache: ds.FromCache,
	}
	if dateOf == nil {
		return out
	}
	for _, item := range ds.Items {
		d := dateOf(item)
		if d.IsZero() {
			continue
		}
		if out.From == nil || d.Before(*out.From) {
			from := d
			out.From = &from
		}
		if out.To == nil || d.After(*out.To) {
			to := d
			out.To = &to
		}
	}
	return out
}
