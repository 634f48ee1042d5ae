package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDatasetRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/summary", handler.GetSummary)
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/matches", handler.ListTournamentMatches)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/rankings", handler.ListRankings)
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/{name}/matches", handler.ListPlayerMatches)
	mux.HandleFunc("GET /v1/stats/active-players", handler.ListActivePlayers)
	mux.HandleFunc("GET /v1/stats/matchups", handler.ListMatchups)
	mux.HandleFunc("GET /v1/stats/rivalries", handler.ListRivalries)
	mux.HandleFunc("GET /v1/stats/heatmaps/{kind}", handler.GetHeatmap)
}

func registerSnapshotRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/snapshots/reports", handler.ListReports)
	mux.HandleFunc("DELETE /v1/snapshots", handler.PurgeSnapshots)
}
