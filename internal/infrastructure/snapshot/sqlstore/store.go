// Package sqlstore keeps snapshots in a single SQL table keyed by
// (kind, snapshot_date). It runs on postgres and sqlite through sqlx.
package sqlstore

import (
	"context"
	"database/sql"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	qb "github.com/riskibarqy/clublocker/internal/platform/querybuilder"
)

// Schema creates the snapshot table. Postgres deployments apply the same
// statement through db/migrations.
const Schema = `CREATE TABLE IF NOT EXISTS snapshots (
	kind TEXT NOT NULL,
	snapshot_date TEXT NOT NULL,
	schema_version INTEGER NOT NULL,
	fetched_at TIMESTAMP NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (kind, snapshot_date)
)`

const upsertSuffix = "ON CONFLICT (kind, snapshot_date) DO UPDATE SET " +
	"schema_version = excluded.schema_version, " +
	"fetched_at = excluded.fetched_at, " +
	"payload = excluded.payload"

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return crerr.Wrap(err, "create snapshots table")
	}
	return nil
}

func (s *Store) Load(ctx context.Context, key snapshot.Key) (snapshot.Envelope, bool, error) {
	if !key.Valid() {
		return snapshot.Envelope{}, false, crerr.Newf("invalid snapshot key %q", key.Name())
	}

	query, args, err := qb.Select("schema_version", "payload").From(tableSnapshots).
		Where(
			qb.Eq("kind", string(key.Kind)),
			qb.Eq("snapshot_date", key.Date),
		).
		ToSQL()
	if err != nil {
		return snapshot.Envelope{}, false, crerr.Wrap(err, "build load snapshot query")
	}

	var row snapshotPayloadModel
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return snapshot.Envelope{}, false, nil
		}
		return snapshot.Envelope{}, false, crerr.Wrapf(err, "load snapshot %s", key.Name())
	}
	if row.SchemaVersion != snapshot.SchemaVersion {
		return snapshot.Envelope{}, false, crerr.Mark(
			crerr.Newf("snapshot %s row has schema version %d", key.Name(), row.SchemaVersion),
			snapshot.ErrCorrupt,
		)
	}

	var envelope snapshot.Envelope
	if err := sonic.UnmarshalString(row.Payload, &envelope); err != nil {
		return snapshot.Envelope{}, false, crerr.Mark(crerr.Wrapf(err, "decode snapshot %s", key.Name()), snapshot.ErrCorrupt)
	}
	if err := envelope.Check(key); err != nil {
		return snapshot.Envelope{}, false, err
	}
	return envelope, true, nil
}

// Save upserts the envelope in one statement.
func (s *Store) Save(ctx context.Context, envelope snapshot.Envelope) error {
	key := envelope.Key()
	if !key.Valid() {
		return crerr.Newf("invalid snapshot key %q", key.Name())
	}

	payload, err := sonic.MarshalString(envelope)
	if err != nil {
		return crerr.Wrapf(err, "encode snapshot %s", key.Name())
	}

	model := snapshotTableModel{
		Kind:          string(envelope.Kind),
		SnapshotDate:  envelope.Date,
		SchemaVersion: envelope.SchemaVersion,
		FetchedAt:     envelope.FetchedAt.UTC(),
		Payload:       payload,
	}
	query, args, err := qb.InsertModel(tableSnapshots, model, upsertSuffix)
	if err != nil {
		return crerr.Wrap(err, "build save snapshot query")
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return crerr.Wrapf(err, "save snapshot %s", key.Name())
	}
	return nil
}

func (s *Store) PurgeDay(ctx context.Context, date string) (int, error) {
	if !(snapshot.Key{Kind: snapshot.KindTournaments, Date: date}).Valid() {
		return 0, crerr.Newf("invalid snapshot date %q", date)
	}

	query, args, err := qb.DeleteFrom(tableSnapshots).
		Where(qb.Eq("snapshot_date", date)).
		ToSQL()
	if err != nil {
		return 0, crerr.Wrap(err, "build purge snapshots query")
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, crerr.Wrapf(err, "purge snapshots %s", date)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, crerr.Wrap(err, "purge snapshots rows affected")
	}
	return int(affected), nil
}

func isNotFound(err error) bool {
	return crerr.Is(err, sql.ErrNoRows)
}
