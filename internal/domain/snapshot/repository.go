package snapshot

import "context"

// Repository persists day-keyed snapshots. Load reports a miss with
// found=false; a snapshot that exists but cannot be decoded returns an error
// wrapping ErrCorrupt. Save must be atomic with respect to concurrent Loads.
type Repository interface {
	Load(ctx context.Context, key Key) (Envelope, bool, error)
	Save(ctx context.Context, envelope Envelope) error
	PurgeDay(ctx context.Context, date string) (int, error)
}
