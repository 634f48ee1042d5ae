package app

import (
	"context"
	"net/http"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/clublocker/external/clublocker"
	"github.com/riskibarqy/clublocker/internal/config"
	"github.com/riskibarqy/clublocker/internal/interfaces/httpapi"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
	"github.com/riskibarqy/clublocker/internal/platform/resilience"
	"github.com/riskibarqy/clublocker/internal/usecase"
)

// Services is the dataset pipeline shared by the API server and the CLI.
type Services struct {
	Datasets *usecase.DatasetService
	Insights *usecase.InsightService

	closeStore func() error
}

// NewServices opens the configured snapshot backend and wires the provider
// client, snapshot cache and dataset services on top of it.
func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repo, closeStore, err := openSnapshotRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client := clublocker.NewClient(clublocker.ClientConfig{
		BaseURL:          cfg.ClubLockerBaseURL,
		Timeout:          cfg.ClubLockerTimeout,
		MaxRetries:       cfg.ClubLockerMaxRetries,
		RetryBackoff:     cfg.ClubLockerRetryBackoff,
		Workers:          cfg.ClubLockerWorkers,
		RankingGroup:     cfg.ClubLockerRankingGroup,
		RankingDivisions: cfg.ClubLockerRankingDivisions,
		MaxRankingPages:  cfg.ClubLockerMaxRankingPages,
		SweepTimeout:     cfg.ClubLockerSweepTimeout,
		Logger:           logger.Named("clublocker"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ClubLockerCircuitEnabled,
			FailureThreshold: cfg.ClubLockerCircuitFailures,
			OpenTimeout:      cfg.ClubLockerCircuitOpenFor,
			HalfOpenMaxReq:   cfg.ClubLockerCircuitHalfOpenRq,
		},
	})

	snapshots := usecase.NewSnapshotCache(repo, usecase.SnapshotCacheConfig{
		Location:       cfg.SnapshotLocation,
		PersistPartial: cfg.SnapshotPersistPartial,
		Logger:         logger,
	})
	datasets := usecase.NewDatasetService(client, snapshots, usecase.DatasetServiceConfig{
		DivisionLabels: cfg.DivisionLabels,
		MemoTTL:        cfg.CacheTTL,
		Logger:         logger,
	})

	return &Services{
		Datasets:   datasets,
		Insights:   usecase.NewInsightService(datasets),
		closeStore: closeStore,
	}, nil
}

func (s *Services) Close() error {
	if s == nil || s.closeStore == nil {
		return nil
	}
	return s.closeStore()
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger, services *Services) (*http.Server, error) {
	if services == nil {
		return nil, crerr.New("services cannot be nil")
	}
	if cfg.HTTPAddr == "" {
		return nil, crerr.New("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(services.Insights, services.Datasets, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
