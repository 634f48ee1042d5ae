package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
)

type heatmapDTO struct {
	Kind       string              `json:"kind"`
	RowAxis    string              `json:"row_axis"`
	ColumnAxis string              `json:"column_axis"`
	Cells      []calendar.HeatCell `json:"cells"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	names, err := h.insights.PlayerNames(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, names)
}

func (h *Handler) ListPlayerMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerMatches")
	defer span.End()

	req := playerMatchesRequest{Name: strings.TrimSpace(r.PathValue("name"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := h.insights.PlayerMatches(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "list player matches failed", "player", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, results)
}

func (h *Handler) ListActivePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListActivePlayers")
	defer span.End()

	query, ok := h.statsQuery(w, r)
	if !ok {
		return
	}
	items, err := h.insights.ActivePlayers(ctx, query.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list active players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMatchups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchups")
	defer span.End()

	query, ok := h.statsQuery(w, r)
	if !ok {
		return
	}
	items, err := h.insights.Matchups(ctx, query.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matchups failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListRivalries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRivalries")
	defer span.End()

	query, ok := h.statsQuery(w, r)
	if !ok {
		return
	}
	items, err := h.insights.Rivalries(ctx, query.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list rivalries failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeatmap")
	defer span.End()

	req := heatmapRequest{Kind: strings.ToLower(strings.TrimSpace(r.PathValue("kind")))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	heat, err := h.insights.Heatmap(ctx, req.Kind)
	if err != nil {
		h.logger.ErrorContext(ctx, "build heatmap failed", "kind", req.Kind, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, heatmapDTO{
		Kind:       req.Kind,
		RowAxis:    heat.RowAxis,
		ColumnAxis: heat.ColumnAxis,
		Cells:      heat.Cells(),
	})
}

func (h *Handler) statsQuery(w http.ResponseWriter, r *http.Request) (statsQuery, bool) {
	ctx := r.Context()
	query, err := parseStatsQuery(r)
	if err == nil {
		err = h.validateRequest(ctx, query)
	}
	if err != nil {
		writeError(ctx, w, err)
		return statsQuery{}, false
	}
	return query, true
}
