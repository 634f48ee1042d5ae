package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/match"
	"github.com/riskibarqy/clublocker/internal/domain/ranking"
	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
	"github.com/riskibarqy/clublocker/internal/usecase"
)

type fakeDatasets struct {
	err     error
	purged  []string
	reports map[snapshot.Kind]sweep.Report
}

func (f *fakeDatasets) Tournaments(context.Context) (usecase.Dataset[tournament.Tournament], error) {
	if f.err != nil {
		return usecase.Dataset[tournament.Tournament]{}, f.err
	}
	start := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	return usecase.Dataset[tournament.Tournament]{Items: []tournament.Tournament{{
		Raw:    tournament.Raw{TournamentID: 502, Name: "Spring Classic", StartDate: start, NumMatches: 12, Type: tournament.TypeResults},
		Fields: calendar.Derive(start),
	}}}, nil
}

func (f *fakeDatasets) Matches(context.Context, []tournament.Tournament, sweep.ProgressFunc) (usecase.Dataset[match.Match], error) {
	if f.err != nil {
		return usecase.Dataset[match.Match]{}, f.err
	}
	day := time.Date(2019, 6, 1, 10, 0, 0, 0, time.UTC)
	build := func(id int64, winner, loser string) match.Match {
		return match.Match{
			Raw:              match.Raw{MatchID: id, TournamentID: 502, HomePlayerName: winner, VisitorPlayerName: loser, MatchDate: day},
			WinnerPlayerName: winner,
			LoserPlayerName:  loser,
			Fields:           calendar.Derive(day),
		}
	}
	return usecase.Dataset[match.Match]{Items: []match.Match{
		build(2_000_020, "Alice Smith", "Bob Jones"),
		build(2_000_021, "Alice Smith", "Carol Brown"),
	}}, nil
}

func (f *fakeDatasets) Rankings(context.Context) (usecase.Dataset[ranking.Ranking], error) {
	if f.err != nil {
		return usecase.Dataset[ranking.Ranking]{}, f.err
	}
	return usecase.Dataset[ranking.Ranking]{Items: []ranking.Ranking{
		{PlayerName: "Doe, Jane", Division: "All Women", DivisionID: 2, Ranking: 1},
	}}, nil
}

func (f *fakeDatasets) Today() string { return "2026-10-15" }

func (f *fakeDatasets) Reports(context.Context) (map[snapshot.Kind]sweep.Report, error) {
	return f.reports, f.err
}

func (f *fakeDatasets) Purge(_ context.Context, date string) (int, error) {
	f.purged = append(f.purged, date)
	return 3, nil
}

func newTestRouter(datasets *fakeDatasets) http.Handler {
	handler := NewHandler(usecase.NewInsightService(datasets), datasets, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), nil)
}

func serve(t *testing.T, router http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body for %s: %v", target, err)
	}
	return rec, body
}

func TestRouter_ReadEndpoints(t *testing.T) {
	router := newTestRouter(&fakeDatasets{})

	tests := []struct {
		target string
		status int
	}{
		{target: "/healthz", status: http.StatusOK},
		{target: "/v1/summary", status: http.StatusOK},
		{target: "/v1/tournaments", status: http.StatusOK},
		{target: "/v1/tournaments/502/matches", status: http.StatusOK},
		{target: "/v1/tournaments/999/matches", status: http.StatusNotFound},
		{target: "/v1/tournaments/abc/matches", status: http.StatusBadRequest},
		{target: "/v1/matches", status: http.StatusOK},
		{target: "/v1/rankings?division=all%20women", status: http.StatusOK},
		{target: "/v1/rankings?division=juniors", status: http.StatusNotFound},
		{target: "/v1/players", status: http.StatusOK},
		{target: "/v1/players/alice/matches", status: http.StatusOK},
		{target: "/v1/stats/active-players?limit=1", status: http.StatusOK},
		{target: "/v1/stats/active-players?limit=501", status: http.StatusBadRequest},
		{target: "/v1/stats/matchups?limit=x", status: http.StatusBadRequest},
		{target: "/v1/stats/rivalries", status: http.StatusOK},
		{target: "/v1/stats/heatmaps/weekdays", status: http.StatusOK},
		{target: "/v1/stats/heatmaps/players", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, _ := serve(t, router, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("GET %s: expected status %d, got %d (%s)", tt.target, tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_ActivePlayersPayload(t *testing.T) {
	router := newTestRouter(&fakeDatasets{})

	_, body := serve(t, router, http.MethodGet, "/v1/stats/active-players?limit=1")
	data, ok := body["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("expected one active player, got %v", body["data"])
	}
	first, _ := data[0].(map[string]any)
	if first["name"] != "Alice Smith" || first["total_matches"] != float64(2) {
		t.Fatalf("unexpected active player: %v", first)
	}
}

func TestRouter_HeatmapPayload(t *testing.T) {
	router := newTestRouter(&fakeDatasets{})

	_, body := serve(t, router, http.MethodGet, "/v1/stats/heatmaps/tournaments")
	data, _ := body["data"].(map[string]any)
	cells, _ := data["cells"].([]any)
	if len(cells) != 1 {
		t.Fatalf("expected one heatmap cell, got %v", data)
	}
	cell, _ := cells[0].(map[string]any)
	if cell["row"] != float64(2019) || cell["column"] != float64(6) || cell["value"] != float64(12) {
		t.Fatalf("unexpected heatmap cell: %v", cell)
	}
}

func TestRouter_DependencyUnavailable(t *testing.T) {
	unavailable := crerr.Mark(crerr.New("club locker unreachable"), usecase.ErrDependencyUnavailable)
	router := newTestRouter(&fakeDatasets{err: unavailable})

	rec, body := serve(t, router, http.MethodGet, "/v1/summary")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	errorObj, _ := body["error"].(map[string]any)
	if errorObj["status"] != "UNAVAILABLE" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestRouter_PurgeSnapshots(t *testing.T) {
	datasets := &fakeDatasets{}
	router := newTestRouter(datasets)

	rec, body := serve(t, router, http.MethodDelete, "/v1/snapshots")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	if data["date"] != "2026-10-15" || data["removed"] != float64(3) {
		t.Fatalf("unexpected purge payload: %v", data)
	}

	rec, _ = serve(t, router, http.MethodDelete, "/v1/snapshots?date=yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid date, got %d", rec.Code)
	}
	if len(datasets.purged) != 1 || datasets.purged[0] != "2026-10-15" {
		t.Fatalf("unexpected purge calls: %v", datasets.purged)
	}
}

func TestRouter_Reports(t *testing.T) {
	report := sweep.NewReport("matches", time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	report.Requests = 10
	report.AddGap(sweep.Gap{Kind: "matches", Request: "/tournaments/502/livematrix", Reason: sweep.GapTimeout, Attempts: 3})
	router := newTestRouter(&fakeDatasets{reports: map[snapshot.Kind]sweep.Report{snapshot.KindMatches: report}})

	_, body := serve(t, router, http.MethodGet, "/v1/snapshots/reports")
	data, _ := body["data"].(map[string]any)
	matches, _ := data[string(snapshot.KindMatches)].(map[string]any)
	if matches["complete"] != false || matches["gaps"] != float64(1) {
		t.Fatalf("unexpected report payload: %v", data)
	}
}
