package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
	"github.com/riskibarqy/clublocker/internal/usecase"
)

// SnapshotAdmin exposes the sweep reports and snapshot maintenance of the
// dataset service.
type SnapshotAdmin interface {
	Reports(ctx context.Context) (map[snapshot.Kind]sweep.Report, error)
	Purge(ctx context.Context, date string) (int, error)
	Today() string
}

type Handler struct {
	insights  *usecase.InsightService
	snapshots SnapshotAdmin
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(insights *usecase.InsightService, snapshots SnapshotAdmin, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		insights:  insights,
		snapshots: snapshots,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type statsQuery struct {
	Limit int `validate:"gte=0,lte=500"`
}

type tournamentMatchesRequest struct {
	TournamentID int64 `validate:"gt=0"`
}

type playerMatchesRequest struct {
	Name string `validate:"required,max=200"`
}

type rankingsQuery struct {
	Division string `validate:"omitempty,max=100"`
}

type heatmapRequest struct {
	Kind string `validate:"required,oneof=tournaments weekdays"`
}

type purgeQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

func parseStatsQuery(r *http.Request) (statsQuery, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return statsQuery{Limit: usecase.DefaultStatsLimit}, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return statsQuery{}, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
	}
	return statsQuery{Limit: limit}, nil
}

func parseTournamentID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("tournamentID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: tournament id must be an integer", usecase.ErrInvalidInput)
	}
	return id, nil
}
