// Package file keeps snapshots as JSON documents named <kind>_<date>.json
// in a single directory.
package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
)

const (
	fileExt  = ".json"
	fileMode = 0o644
	dirMode  = 0o755
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, crerr.New("snapshot dir is required")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, crerr.Wrapf(err, "create snapshot dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key snapshot.Key) string {
	return filepath.Join(s.dir, key.Name()+fileExt)
}

func (s *Store) Load(ctx context.Context, key snapshot.Key) (snapshot.Envelope, bool, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Envelope{}, false, err
	}
	if !key.Valid() {
		return snapshot.Envelope{}, false, crerr.Newf("invalid snapshot key %q", key.Name())
	}

	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot.Envelope{}, false, nil
		}
		return snapshot.Envelope{}, false, crerr.Wrapf(err, "read snapshot %s", key.Name())
	}

	var envelope snapshot.Envelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return snapshot.Envelope{}, false, crerr.Mark(crerr.Wrapf(err, "decode snapshot %s", key.Name()), snapshot.ErrCorrupt)
	}
	if err := envelope.Check(key); err != nil {
		return snapshot.Envelope{}, false, err
	}
	return envelope, true, nil
}

// Save writes to a temp file in the target directory, syncs it and renames it
// over the final name so readers never observe a partial document.
func (s *Store) Save(ctx context.Context, envelope snapshot.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := envelope.Key()
	if !key.Valid() {
		return crerr.Newf("invalid snapshot key %q", key.Name())
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(envelope); err != nil {
		return crerr.Wrapf(err, "encode snapshot %s", key.Name())
	}

	tmp, err := os.CreateTemp(s.dir, "."+key.Name()+"-*.tmp")
	if err != nil {
		return crerr.Wrapf(err, "create temp snapshot %s", key.Name())
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.B); err != nil {
		return crerr.Wrapf(err, "write temp snapshot %s", key.Name())
	}
	if err := tmp.Chmod(fileMode); err != nil {
		return crerr.Wrapf(err, "chmod temp snapshot %s", key.Name())
	}
	if err := tmp.Sync(); err != nil {
		return crerr.Wrapf(err, "sync temp snapshot %s", key.Name())
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close temp snapshot %s", key.Name())
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return crerr.Wrapf(err, "rename snapshot %s", key.Name())
	}
	committed = true
	return nil
}

// PurgeDay removes the snapshot of every kind stored for date and reports how
// many files were deleted.
func (s *Store) PurgeDay(ctx context.Context, date string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed := 0
	for _, kind := range snapshot.Kinds {
		key := snapshot.Key{Kind: kind, Date: date}
		if !key.Valid() {
			return removed, crerr.Newf("invalid snapshot date %q", date)
		}
		err := os.Remove(s.path(key))
		switch {
		case err == nil:
			removed++
		case os.IsNotExist(err):
		default:
			return removed, crerr.Wrapf(err, "remove snapshot %s", key.Name())
		}
	}
	return removed, nil
}
