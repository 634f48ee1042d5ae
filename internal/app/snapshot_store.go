package app

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"

	"github.com/riskibarqy/clublocker/internal/config"
	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/infrastructure/snapshot/file"
	"github.com/riskibarqy/clublocker/internal/infrastructure/snapshot/sqlstore"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
)

func openSnapshotRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (snapshot.Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SnapshotBackend {
	case config.SnapshotBackendFile, "":
		store, err := file.NewStore(cfg.SnapshotDir)
		if err != nil {
			return nil, nil, crerr.Wrap(err, "open file snapshot store")
		}
		logger.Info("snapshot store ready", "backend", config.SnapshotBackendFile, "dir", store.Dir())
		return store, noop, nil

	case config.SnapshotBackendPostgres, config.SnapshotBackendSQLite:
		return openSQLRepository(ctx, cfg, logger)

	default:
		return nil, nil, crerr.Newf("unsupported snapshot backend %q", cfg.SnapshotBackend)
	}
}

func openSQLRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (snapshot.Repository, func() error, error) {
	target, err := cfg.Database()
	if err != nil {
		return nil, nil, err
	}

	db, err := otelsqlx.Open(target.Driver, target.DSN,
		otelsql.WithDBName(target.Name),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, crerr.Wrapf(err, "open %s snapshot store", target.Driver)
	}

	store := sqlstore.NewStore(db)
	switch target.Driver {
	case config.DriverSQLite:
		// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		err = store.CreateSchema(ctx)
	default:
		err = db.PingContext(ctx)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, crerr.Wrapf(err, "prepare %s snapshot store", target.Driver)
	}

	logger.Info("snapshot store ready", "backend", cfg.SnapshotBackend, "db", target.Name)
	return store, db.Close, nil
}
