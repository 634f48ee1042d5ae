package sqlstore

import "time"

const tableSnapshots = "snapshots"

type snapshotTableModel struct {
	Kind          string    `db:"kind"`
	SnapshotDate  string    `db:"snapshot_date"`
	SchemaVersion int       `db:"schema_version"`
	FetchedAt     time.Time `db:"fetched_at"`
	Payload       string    `db:"payload"`
}

type snapshotPayloadModel struct {
	SchemaVersion int    `db:"schema_version"`
	Payload       string `db:"payload"`
}
