package cache

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is an in-process TTL map. GetOrLoad collapses concurrent loads of
// the same key into one loader call.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	flight  singleflight.Group
}

func NewStore(ttl time.Duration) *Store {
	return NewStoreWithClock(ttl, time.Now)
}

func NewStoreWithClock(ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{entries: make(map[string]entry), ttl: ttl, now: now}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}
	e := entry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *Store) Delete(ctx context.Context, key string) {
	s.DeleteFunc(ctx, func(k string) bool { return k == key })
}

// DeleteFunc drops every entry whose key matches, plus any expired entry it
// passes over. It returns the number of live entries removed.
func (s *Store) DeleteFunc(_ context.Context, match func(key string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		switch {
		case match(key):
			if !s.expired(e) {
				removed++
			}
			delete(s.entries, key)
		case s.expired(e):
			delete(s.entries, key)
		}
	}
	return removed
}

// GetOrLoad returns the cached value for key or runs loader once for every
// concurrent caller. The loader runs detached from the caller's
// cancellation, so one caller giving up does not fail the others; the caller
// itself still returns as soon as its ctx is done. Errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, crerr.New("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		if cached, ok := s.Get(loadCtx, key); ok {
			return cached, nil
		}
		loaded, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		s.Set(loadCtx, key, loaded)
		return loaded, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && !e.expiresAt.After(s.now())
}
