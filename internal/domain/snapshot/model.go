package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
)

// SchemaVersion is bumped whenever the persisted record layout changes.
// Snapshots with another version are treated as misses.
const SchemaVersion = 1

type Kind string

const (
	KindTournaments Kind = "tournaments"
	KindMatches     Kind = "matches"
	KindRankings    Kind = "rankings"
)

// Kinds lists every dataset kind in load order.
var Kinds = []Kind{KindTournaments, KindMatches, KindRankings}

var ErrCorrupt = errors.New("snapshot is corrupt")

// Key identifies one day's snapshot of one dataset.
type Key struct {
	Kind Kind
	Date string
}

func NewKey(kind Kind, day time.Time) Key {
	return Key{Kind: kind, Date: day.Format(calendar.DateLayout)}
}

// Name is the storage name of the snapshot, e.g. matches_2026-10-15.
func (k Key) Name() string {
	return string(k.Kind) + "_" + k.Date
}

func (k Key) Valid() bool {
	if k.Kind != KindTournaments && k.Kind != KindMatches && k.Kind != KindRankings {
		return false
	}
	_, err := time.Parse(calendar.DateLayout, k.Date)
	return err == nil
}

// Envelope is the persisted unit. Records holds the encoded dataset.
type Envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Kind          Kind            `json:"kind"`
	Date          string          `json:"date"`
	FetchedAt     time.Time       `json:"fetched_at"`
	Report        sweep.Report    `json:"report"`
	Records       json.RawMessage `json:"records"`
}

func (e Envelope) Key() Key {
	return Key{Kind: e.Kind, Date: e.Date}
}

// Check reports ErrCorrupt when a decoded envelope does not belong under key
// or was written with another schema version.
func (e Envelope) Check(key Key) error {
	if e.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: %s has schema version %d, want %d", ErrCorrupt, key.Name(), e.SchemaVersion, SchemaVersion)
	}
	if e.Key() != key {
		return fmt.Errorf("%w: %s holds %s", ErrCorrupt, key.Name(), e.Key().Name())
	}
	return nil
}
