package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/clublocker/internal/domain/match"
	"github.com/riskibarqy/clublocker/internal/domain/ranking"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// rawTournaments is three provider records of which only the 2019-06-01
// event has matches.
func rawTournaments() []tournament.Raw {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return []tournament.Raw{
		{TournamentID: 501, Name: "Empty Open", StartDate: day(2019, 5, 1), EndDate: day(2019, 5, 2), NumMatches: 0, NumPlayers: 16, Type: tournament.TypeResults},
		{TournamentID: 502, Name: "Spring Classic", StartDate: day(2019, 6, 1), EndDate: day(2019, 6, 2), NumMatches: 12, NumPlayers: 20, Type: tournament.TypeResults},
		{TournamentID: 503, Name: "Future Cup", StartDate: day(2027, 1, 10), EndDate: day(2027, 1, 11), NumMatches: 0, NumPlayers: 0, Type: tournament.TypeScheduled},
	}
}

func rawMatch(id int64, scores [match.MaxGames][2]int) match.Raw {
	start := time.Date(2019, 6, 1, 10, 0, 0, 0, time.UTC)
	r := match.Raw{
		MatchID:           id,
		TournamentID:      502,
		HomePlayerName:    "Smith,Alice",
		VisitorPlayerName: "Jones,Bob",
		MatchDate:         start,
		MatchStart:        timePtr(start),
		MatchEnd:          timePtr(start.Add(40 * time.Minute)),
		WinnerSide:        match.SideHome,
	}
	for i, s := range scores {
		r.Games[i] = match.Game{WinnerScore: intPtr(s[0]), OpponentScore: intPtr(s[1])}
	}
	return r
}

// rawMatches is five provider records: two under the rally threshold and
// three copies of one valid match returned by overlapping day windows.
func rawMatches() []match.Raw {
	valid := [match.MaxGames][2]int{{11, 7}, {9, 11}, {11, 8}, {11, 6}, {0, 0}}
	short := [match.MaxGames][2]int{{3, 2}, {3, 2}, {3, 2}, {0, 0}, {0, 0}}
	return []match.Raw{
		rawMatch(2_000_010, short),
		rawMatch(2_000_011, short),
		rawMatch(2_000_020, valid),
		rawMatch(2_000_020, valid),
		rawMatch(2_000_020, valid),
	}
}

func rawRankings() []ranking.Raw {
	return []ranking.Raw{
		{DivisionID: 2, Page: 1, Fields: map[string]any{"PlayerName": "Doe, Jane", "Ranking": float64(1), "Rating": 5.2}},
		{DivisionID: 1, Page: 1, Fields: map[string]any{"playername": "Roe, Rick", "ranking": float64(1), "rating": 4.9, "age": float64(31)}},
	}
}

type fakeFetcher struct {
	mu              sync.Mutex
	calls           map[string]int
	tournaments     []tournament.Raw
	matches         []match.Raw
	rankings        []ranking.Raw
	matchGaps       []sweep.Gap
	err             error
	seenTournaments []tournament.Tournament
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls:       make(map[string]int),
		tournaments: rawTournaments(),
		matches:     rawMatches(),
		rankings:    rawRankings(),
	}
}

func (f *fakeFetcher) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeFetcher) record(kind string) {
	f.mu.Lock()
	f.calls[kind]++
	f.mu.Unlock()
}

func (f *fakeFetcher) FetchTournaments(context.Context) (sweep.Result[tournament.Raw], error) {
	f.record("tournaments")
	if f.err != nil {
		return sweep.Result[tournament.Raw]{}, f.err
	}
	report := sweep.NewReport("tournaments", fixedNow)
	report.Requests = 2
	report.Records = len(f.tournaments)
	return sweep.Result[tournament.Raw]{Records: f.tournaments, Report: report}, nil
}

func (f *fakeFetcher) FetchMatches(_ context.Context, tournaments []tournament.Tournament, progress sweep.ProgressFunc) (sweep.Result[match.Raw], error) {
	f.record("matches")
	f.mu.Lock()
	f.seenTournaments = tournaments
	f.mu.Unlock()
	if f.err != nil {
		return sweep.Result[match.Raw]{}, f.err
	}
	if progress != nil {
		progress(sweep.Progress{Done: len(tournaments), Total: len(tournaments)})
	}
	report := sweep.NewReport("matches", fixedNow)
	report.Requests = 2
	report.Records = len(f.matches)
	for _, gap := range f.matchGaps {
		report.AddGap(gap)
	}
	return sweep.Result[match.Raw]{Records: f.matches, Report: report}, nil
}

func (f *fakeFetcher) FetchRankings(context.Context) (sweep.Result[ranking.Raw], error) {
	f.record("rankings")
	if f.err != nil {
		return sweep.Result[ranking.Raw]{}, f.err
	}
	report := sweep.NewReport("rankings", fixedNow)
	report.Requests = 4
	report.Records = len(f.rankings)
	return sweep.Result[ranking.Raw]{Records: f.rankings, Report: report}, nil
}
