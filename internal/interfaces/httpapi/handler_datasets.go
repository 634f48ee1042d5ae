package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/clublocker/internal/domain/match"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
)

type tournamentMatchesDTO struct {
	Tournament tournament.Tournament `json:"tournament"`
	Matches    []match.Match         `json:"matches"`
}

type purgeDTO struct {
	Date    string `json:"date"`
	Removed int    `json:"removed"`
}

type reportDTO struct {
	Kind       string         `json:"kind"`
	Requests   int            `json:"requests"`
	Records    int            `json:"records"`
	Complete   bool           `json:"complete"`
	Gaps       int            `json:"gaps"`
	Drops      map[string]int `json:"drops,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSummary")
	defer span.End()

	summary, err := h.insights.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "load summary failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, err := h.insights.Tournaments(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTournamentMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournamentMatches")
	defer span.End()

	id, err := parseTournamentID(r)
	if err == nil {
		err = h.validateRequest(ctx, tournamentMatchesRequest{TournamentID: id})
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	found, matches, err := h.insights.TournamentMatches(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "list tournament matches failed", "tournament_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentMatchesDTO{Tournament: found, Matches: matches})
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	items, err := h.insights.Matches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRankings")
	defer span.End()

	req := rankingsQuery{Division: strings.TrimSpace(r.URL.Query().Get("division"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.insights.Rankings(ctx, req.Division)
	if err != nil {
		h.logger.WarnContext(ctx, "list rankings failed", "division", req.Division, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListReports")
	defer span.End()

	reports, err := h.snapshots.Reports(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list sweep reports failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make(map[string]reportDTO, len(reports))
	for kind, report := range reports {
		out[string(kind)] = reportDTO{
			Kind:       report.Kind,
			Requests:   report.Requests,
			Records:    report.Records,
			Complete:   report.Complete(),
			Gaps:       len(report.Gaps),
			Drops:      report.Drops,
			StartedAt:  report.StartedAt,
			FinishedAt: report.FinishedAt,
		}
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) PurgeSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PurgeSnapshots")
	defer span.End()

	req := purgeQuery{Date: strings.TrimSpace(r.URL.Query().Get("date"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Date == "" {
		req.Date = h.snapshots.Today()
	}

	removed, err := h.snapshots.Purge(ctx, req.Date)
	if err != nil {
		h.logger.ErrorContext(ctx, "purge snapshots failed", "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, purgeDTO{Date: req.Date, Removed: removed})
}
