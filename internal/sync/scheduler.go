package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/cache"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/store"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/tenant"
)

// ErrPathUnresolved means no company is selected yet. Not operator-facing:
// callers skip synchronization until a scope arrives.
var ErrPathUnresolved = errors.New("tenant scope not resolved")

const (
	// DefaultDebounce collapses bursts of scope-change signals (company and
	// site changing together) into one synchronization pass.
	DefaultDebounce = 100 * time.Millisecond
	// DefaultBackgroundDelay is the idle fallback before the background
	// phase starts loading non-critical kinds.
	DefaultBackgroundDelay = 250 * time.Millisecond
)

// Options tunes the scheduler's timers.
type Options struct {
	Debounce        time.Duration
	BackgroundDelay time.Duration
	Logger          zerolog.Logger
}

// Scheduler orchestrates synchronization passes: debounced scope-change
// handling, the two-phase load (critical kinds blocking, background kinds
// deferred), "first non-empty wins" fallback across candidate paths, and
// staleness-tagged commits so a superseded pass can never overwrite a newer
// scope's data.
type Scheduler struct {
	log     zerolog.Logger
	remote  store.RemoteStore
	fetcher *cache.Fetcher
	state   *Store

	debounce time.Duration
	bgDelay  time.Duration

	mu      gosync.Mutex
	timer   *time.Timer // pending debounce timer, nil when idle
	gen     uint64      // bumped whenever the target scope changes
	target  []string    // resolved candidate paths of the current target
	settled string      // primary path of the last settled pass
}

func NewScheduler(remote store.RemoteStore, fetcher *cache.Fetcher, state *Store, opts Options) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.BackgroundDelay <= 0 {
		opts.BackgroundDelay = DefaultBackgroundDelay
	}
	return &Scheduler{
		log:      opts.Logger,
		remote:   remote,
		fetcher:  fetcher,
		state:    state,
		debounce: opts.Debounce,
		bgDelay:  opts.BackgroundDelay,
	}
}

// Run consumes scope replacements until ctx is done. Blocking; callers start
// it on its own goroutine.
func (s *Scheduler) Run(ctx context.Context, scopes <-chan tenant.Scope) {
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.timer != nil {
				s.timer.Stop()
				s.timer = nil
			}
			s.mu.Unlock()
			return
		case sc := <-scopes:
			s.OnScopeChange(sc)
		}
	}
}

// OnScopeChange retargets the scheduler. Identical already-settled targets
// are a no-op; everything else is debounced so rapid successive changes
// result in exactly one pass, targeting the final scope.
func (s *Scheduler) OnScopeChange(sc tenant.Scope) {
	paths := tenant.Resolve(sc)

	s.mu.Lock()
	if len(paths) == 0 {
		// Scope cleared: cancel anything pending and blank the snapshot.
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.gen++
		s.target = nil
		s.settled = ""
		s.mu.Unlock()
		s.fetcher.Reset()
		s.state.ClearAll()
		return
	}

	if s.timer == nil && s.settled == paths[0] {
		// Re-trigger for the path already loaded: idempotent no-op.
		s.mu.Unlock()
		return
	}

	s.gen++
	gen := s.gen
	s.target = paths
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		s.runPass(context.Background(), gen, paths)
	})
	s.mu.Unlock()
}

// current reports whether a pass tagged (gen, primary) still matches the
// scheduler's target. Stale passes discard their merges at commit time.
func (s *Scheduler) current(gen uint64, primary string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen && len(s.target) > 0 && s.target[0] == primary
}

// commit publishes one phase's collections. The generation is re-checked
// under the same lock that OnScopeChange bumps it under, so a scope change
// can never land between the staleness check and the merge: a stale pass
// either sees the new generation and discards, or finishes its merge before
// the retarget proceeds.
func (s *Scheduler) commit(gen uint64, primary string, cols map[model.EntityKind][]model.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || len(s.target) == 0 || s.target[0] != primary {
		return false
	}
	s.state.MergePartial(primary, cols)
	s.settled = primary
	return true
}

// Settled returns the primary path of the last settled pass, or "".
func (s *Scheduler) Settled() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// runPass executes one two-phase synchronization pass for the given target.
func (s *Scheduler) runPass(ctx context.Context, gen uint64, paths []string) {
	primary := paths[0]
	s.state.SetLoading()

	critical, failed := s.loadKinds(ctx, model.CriticalKinds(), paths, false)
	if failed == len(model.CriticalKinds()) && s.current(gen, primary) {
		// No critical kind produced anything usable; surface a generic
		// refresh failure but keep whatever data was on screen.
		s.state.SetError("failed to refresh")
	}
	if !s.commit(gen, primary, critical) {
		s.log.Debug().Str("path", primary).Msg("sync: discarding stale critical merge")
		return
	}
	s.log.Info().Str("path", primary).Int("kinds", len(critical)).Msg("sync: critical phase settled")

	// Background phase: deferred so the critical data renders first. Its
	// failures never invalidate the critical phase's merge.
	time.Sleep(s.bgDelay)
	if !s.current(gen, primary) {
		return
	}
	background, _ := s.loadKinds(ctx, model.BackgroundKinds(), paths, false)
	if !s.commit(gen, primary, background) {
		s.log.Debug().Str("path", primary).Msg("sync: discarding stale background merge")
		return
	}
	s.log.Info().Str("path", primary).Int("kinds", len(background)).Msg("sync: background phase settled")
}

// loadKinds probes every kind concurrently and returns the merged results
// plus the number of kinds whose every candidate failed. A fully-failed kind
// resolves to its stale cache entry when one exists, otherwise to an empty
// collection; it never aborts the pass.
func (s *Scheduler) loadKinds(ctx context.Context, kinds []model.EntityKind, paths []string, force bool) (map[model.EntityKind][]model.Record, int) {
	var (
		wg     gosync.WaitGroup
		mu     gosync.Mutex
		out    = make(map[model.EntityKind][]model.Record, len(kinds))
		failed int
	)
	for _, kind := range kinds {
		kind := kind
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := s.probe(ctx, kind, paths, force)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if stale, ok := s.fetcher.Stale(kind, paths[0]); ok {
					out[kind] = stale
					return
				}
				out[kind] = []model.Record{}
				return
			}
			out[kind] = recs
		}()
	}
	wg.Wait()
	return out, failed
}

// probe walks the candidate paths most-specific-first and returns the first
// non-empty collection: an empty subsite does not shadow site-level data
// (intentional inheritance, not error recovery). When every candidate is
// empty it returns the primary candidate's (empty) result; when every
// candidate fails it returns the last error.
func (s *Scheduler) probe(ctx context.Context, kind model.EntityKind, paths []string, force bool) ([]model.Record, error) {
	var (
		lastErr error
		empty   []model.Record
		haveOK  bool
	)
	for _, p := range paths {
		p := p
		recs, err := s.fetcher.Fetch(ctx, kind, p, force, func(ctx context.Context) ([]model.Record, error) {
			return s.remote.List(ctx, p, kind)
		})
		if err != nil {
			lastErr = err
			s.log.Warn().Str("kind", string(kind)).Str("path", p).Err(err).Msg("sync: candidate fetch failed")
			continue
		}
		if len(recs) > 0 {
			return recs, nil
		}
		if !haveOK {
			empty = recs
			haveOK = true
		}
	}
	if haveOK {
		return empty, nil
	}
	return nil, lastErr
}

// RefreshKind re-runs the per-kind probe for the current target and commits
// the result as a single-collection transition. CRUD mutations call this
// (after invalidating the cache) instead of a full resynchronization.
func (s *Scheduler) RefreshKind(ctx context.Context, kind model.EntityKind, force bool) error {
	paths := s.targetPaths()
	if len(paths) == 0 {
		return ErrPathUnresolved
	}
	recs, err := s.probe(ctx, kind, paths, force)
	if err != nil {
		s.log.Warn().Str("kind", string(kind)).Err(err).Msg("sync: refresh failed on every candidate")
		return err
	}
	s.state.SetCollection(kind, recs)
	return nil
}

// RefreshAll runs a full synchronous pass for the current target: critical
// kinds first, merged, then background kinds. An unchanged, already-settled
// target is served entirely from fresh cache entries, so an immediate second
// call performs zero remote reads.
func (s *Scheduler) RefreshAll(ctx context.Context) error {
	paths := s.targetPaths()
	if len(paths) == 0 {
		return ErrPathUnresolved
	}
	primary := paths[0]
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	s.state.SetLoading()
	critical, failed := s.loadKinds(ctx, model.CriticalKinds(), paths, false)
	if failed == len(model.CriticalKinds()) && s.current(gen, primary) {
		s.state.SetError("failed to refresh")
	}
	if !s.commit(gen, primary, critical) {
		return nil
	}

	background, _ := s.loadKinds(ctx, model.BackgroundKinds(), paths, false)
	if !s.commit(gen, primary, background) {
		return nil
	}
	return nil
}

// Invalidate drops the cache entry for the primary path of the current
// target; the subsequent RefreshKind will hit the store.
func (s *Scheduler) Invalidate(kind model.EntityKind) {
	if paths := s.targetPaths(); len(paths) > 0 {
		s.fetcher.Invalidate(kind, paths[0])
	}
}

// PrimaryPath returns the write target for CRUD operations.
func (s *Scheduler) PrimaryPath() (string, error) {
	paths := s.targetPaths()
	if len(paths) == 0 {
		return "", ErrPathUnresolved
	}
	return paths[0], nil
}

func (s *Scheduler) targetPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.target))
	copy(out, s.target)
	return out
}
