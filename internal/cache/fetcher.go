// Package cache provides the per-(kind, path) memoization layer in front of
// the remote store. Its freshness window is short: long enough to absorb the
// redundant fetches a burst of refresh triggers produces, short enough that
// operator actions are reflected near real time.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// DefaultTTL is the freshness window used when none is configured.
const DefaultTTL = 5 * time.Second

// LoadFunc fetches one collection from the backing store.
type LoadFunc func(ctx context.Context) ([]model.Record, error)

type key struct {
	kind model.EntityKind
	path string
}

type entry struct {
	records   []model.Record
	fetchedAt time.Time
}

// Fetcher memoizes collection fetches per (entityKind, rootPath). Entries from
// different scopes never collide. A failed load preserves the previous entry
// so callers can fall back to stale data.
type Fetcher struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[key]entry
	now     func() time.Time // injectable clock for tests
}

func NewFetcher(ttl time.Duration) *Fetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Fetcher{
		ttl:     ttl,
		entries: make(map[key]entry),
		now:     time.Now,
	}
}

// Fetch returns the cached collection for (kind, path) when it is fresh and
// force is false; otherwise it runs load and stores the result. On load
// failure the stale entry (if any) is kept and the error is returned.
func (f *Fetcher) Fetch(ctx context.Context, kind model.EntityKind, path string, force bool, load LoadFunc) ([]model.Record, error) {
	k := key{kind, path}

	f.mu.Lock()
	if !force {
		if e, ok := f.entries[k]; ok && f.now().Sub(e.fetchedAt) < f.ttl {
			f.mu.Unlock()
			return e.records, nil
		}
	}
	f.mu.Unlock()

	recs, err := load(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.entries[k] = entry{records: recs, fetchedAt: f.now()}
	f.mu.Unlock()
	return recs, nil
}

// Stale returns the last known collection for (kind, path) regardless of
// freshness. Used when every candidate path fails.
func (f *Fetcher) Stale(kind model.EntityKind, path string) ([]model.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key{kind, path}]
	return e.records, ok
}

// Invalidate drops the entry for (kind, path) so the next Fetch hits the
// store. Called after CRUD writes.
func (f *Fetcher) Invalidate(kind model.EntityKind, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key{kind, path})
}

// Reset clears every entry. Called when the tenant scope is cleared.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[key]entry)
}

// SetClock overrides the time source. Test hook.
func (f *Fetcher) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}
