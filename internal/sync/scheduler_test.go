package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/cache"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/store"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/tenant"
)

// fakeStore wraps a MemStore, counting List calls per path and optionally
// failing every read.
type fakeStore struct {
	mem *store.MemStore

	mu    gosync.Mutex
	lists map[string]int
	fail  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{mem: store.NewMemStore(), lists: make(map[string]int)}
}

func (f *fakeStore) setFailing(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeStore) listCalls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[path]
}

func (f *fakeStore) totalListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.lists {
		n += c
	}
	return n
}

func (f *fakeStore) List(ctx context.Context, path string, kind model.EntityKind) ([]model.Record, error) {
	f.mu.Lock()
	f.lists[path]++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, errors.New("store unavailable")
	}
	return f.mem.List(ctx, path, kind)
}

func (f *fakeStore) Create(ctx context.Context, path string, kind model.EntityKind, rec model.Record) (string, error) {
	return f.mem.Create(ctx, path, kind, rec)
}

func (f *fakeStore) Update(ctx context.Context, path string, kind model.EntityKind, id string, rec model.Record) error {
	return f.mem.Update(ctx, path, kind, id, rec)
}

func (f *fakeStore) Delete(ctx context.Context, path string, kind model.EntityKind, id string) error {
	return f.mem.Delete(ctx, path, kind, id)
}

var _ store.RemoteStore = (*fakeStore)(nil)

// stallingStore blocks every List against one path until released, so a
// synchronization pass can be held in flight while the target changes
// underneath it.
type stallingStore struct {
	mem       *store.MemStore
	stallPath string
	entered   chan struct{} // signalled once per stalled List
	release   chan struct{} // closed to let stalled Lists proceed
}

func newStallingStore(stallPath string) *stallingStore {
	return &stallingStore{
		mem:       store.NewMemStore(),
		stallPath: stallPath,
		entered:   make(chan struct{}, 16),
		release:   make(chan struct{}),
	}
}

func (s *stallingStore) List(ctx context.Context, path string, kind model.EntityKind) ([]model.Record, error) {
	if path == s.stallPath {
		select {
		case s.entered <- struct{}{}:
		default:
		}
		<-s.release
	}
	return s.mem.List(ctx, path, kind)
}

func (s *stallingStore) Create(ctx context.Context, path string, kind model.EntityKind, rec model.Record) (string, error) {
	return s.mem.Create(ctx, path, kind, rec)
}

func (s *stallingStore) Update(ctx context.Context, path string, kind model.EntityKind, id string, rec model.Record) error {
	return s.mem.Update(ctx, path, kind, id, rec)
}

func (s *stallingStore) Delete(ctx context.Context, path string, kind model.EntityKind, id string) error {
	return s.mem.Delete(ctx, path, kind, id)
}

var _ store.RemoteStore = (*stallingStore)(nil)

func newTestScheduler(remote store.RemoteStore, ttl time.Duration) (*Scheduler, *Store) {
	state := NewStore()
	sched := NewScheduler(remote, cache.NewFetcher(ttl), state, Options{
		Debounce:        10 * time.Millisecond,
		BackgroundDelay: time.Millisecond,
		Logger:          zerolog.Nop(),
	})
	return sched, state
}

func waitSettled(t *testing.T, sched *Scheduler, path string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return sched.Settled() == path
	}, 2*time.Second, 5*time.Millisecond, "scheduler never settled on %s", path)
}

func TestSchedulerLoadsCriticalAndBackground(t *testing.T) {
	fs := newFakeStore()
	fs.mem.Seed("companies/c1", model.KindBill, model.Record{ID: "b1"})
	fs.mem.Seed("companies/c1", model.KindDiscount, model.Record{ID: "d1"})
	sched, state := newTestScheduler(fs, time.Hour)

	sched.OnScopeChange(tenant.Scope{CompanyID: "c1"})
	waitSettled(t, sched, "companies/c1")

	require.Eventually(t, func() bool {
		return len(state.Collection(model.KindDiscount)) == 1
	}, 2*time.Second, 5*time.Millisecond, "background kinds never arrived")

	snap := state.Snapshot()
	assert.True(t, snap.Initialized)
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Collections[model.KindBill], 1)
	assert.Equal(t, "companies/c1", snap.Path)
}

func TestSchedulerDebouncesRapidScopeChanges(t *testing.T) {
	fs := newFakeStore()
	sched, state := newTestScheduler(fs, time.Hour)

	// Company and site selected in quick succession: only the final target
	// may be synchronized.
	sched.OnScopeChange(tenant.Scope{CompanyID: "c1"})
	sched.OnScopeChange(tenant.Scope{CompanyID: "c1", SiteID: "s1"})
	waitSettled(t, sched, "companies/c1/sites/s1")

	require.Eventually(t, func() bool {
		return state.Snapshot().Initialized
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond) // allow any stray pass to surface

	assert.Zero(t, fs.listCalls("companies/c1"), "the superseded target must never be fetched")
	assert.Positive(t, fs.listCalls("companies/c1/sites/s1"))
}

func TestSchedulerReTriggerForSettledScopeIsNoOp(t *testing.T) {
	fs := newFakeStore()
	sched, _ := newTestScheduler(fs, time.Hour)

	sc := tenant.Scope{CompanyID: "c1"}
	sched.OnScopeChange(sc)
	waitSettled(t, sched, "companies/c1")
	time.Sleep(20 * time.Millisecond)
	before := fs.totalListCalls()

	sched.OnScopeChange(sc)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, before, fs.totalListCalls(), "re-selecting the loaded scope must not refetch")
}

func TestSchedulerEmptyScopeClearsEverything(t *testing.T) {
	fs := newFakeStore()
	fs.mem.Seed("companies/c1", model.KindBill, model.Record{ID: "b1"})
	sched, state := newTestScheduler(fs, time.Hour)

	sched.OnScopeChange(tenant.Scope{CompanyID: "c1"})
	waitSettled(t, sched, "companies/c1")
	time.Sleep(20 * time.Millisecond) // let the background phase finish

	sched.OnScopeChange(tenant.Scope{})

	snap := state.Snapshot()
	assert.False(t, snap.Initialized)
	assert.Empty(t, snap.Collections)
	assert.Empty(t, sched.Settled())
	_, err := sched.PrimaryPath()
	assert.ErrorIs(t, err, ErrPathUnresolved)
}

func TestSchedulerSubsiteFallsBackToSiteData(t *testing.T) {
	fs := newFakeStore()
	// The subsite partition is empty; the site holds shared configuration.
	fs.mem.Seed("companies/c1/sites/s1", model.KindPaymentType, model.Record{ID: "cash"}, model.Record{ID: "card"})
	sched, state := newTestScheduler(fs, time.Hour)

	sched.OnScopeChange(tenant.Scope{CompanyID: "c1", SiteID: "s1", SubsiteID: "u1"})
	waitSettled(t, sched, "companies/c1/sites/s1/subsites/u1")

	got := state.Collection(model.KindPaymentType)
	require.Len(t, got, 2, "empty subsite must inherit site-level records")
	assert.Equal(t, "cash", got[0].ID)
}

func TestSchedulerSubsiteDataShadowsSite(t *testing.T) {
	fs := newFakeStore()
	fs.mem.Seed("companies/c1/sites/s1", model.KindPaymentType, model.Record{ID: "cash"})
	fs.mem.Seed("companies/c1/sites/s1/subsites/u1", model.KindPaymentType, model.Record{ID: "voucher"})
	sched, state := newTestScheduler(fs, time.Hour)

	sched.OnScopeChange(tenant.Scope{CompanyID: "c1", SiteID: "s1", SubsiteID: "u1"})
	waitSettled(t, sched, "companies/c1/sites/s1/subsites/u1")

	got := state.Collection(model.KindPaymentType)
	require.Len(t, got, 1)
	assert.Equal(t, "voucher", got[0].ID, "non-empty subsite data wins over the site fallback")
}

func TestSchedulerInFlightPassDiscardsLateMerge(t *testing.T) {
	const (
		oldPath = "companies/c1/sites/s1"
		newPath = "companies/c1/sites/s2"
	)
	ss := newStallingStore(oldPath)
	ss.mem.Seed(oldPath, model.KindBill, model.Record{ID: "old-bill"})
	ss.mem.Seed(newPath, model.KindBill, model.Record{ID: "fresh-bill"})
	sched, state := newTestScheduler(ss, time.Hour)

	// First pass reaches the store and stalls mid-critical-phase.
	sched.OnScopeChange(tenant.Scope{CompanyID: "c1", SiteID: "s1"})
	select {
	case <-ss.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first pass never reached the store")
	}

	// Retarget while the first pass is still in flight, let the new pass
	// settle, then release the stalled one.
	sched.OnScopeChange(tenant.Scope{CompanyID: "c1", SiteID: "s2"})
	waitSettled(t, sched, newPath)
	close(ss.release)
	time.Sleep(50 * time.Millisecond) // give the released pass time to (not) commit

	snap := state.Snapshot()
	assert.Equal(t, newPath, snap.Path, "a superseded pass must never re-tag the snapshot")
	assert.Equal(t, newPath, sched.Settled())
	require.Len(t, snap.Collections[model.KindBill], 1)
	assert.Equal(t, "fresh-bill", snap.Collections[model.KindBill][0].ID,
		"the stale pass's records must be discarded at commit time")
}

func TestRefreshAllSecondCallServedFromCache(t *testing.T) {
	fs := newFakeStore()
	fs.mem.Seed("companies/c1", model.KindBill, model.Record{ID: "b1"})
	sched, _ := newTestScheduler(fs, time.Hour)

	sched.OnScopeChange(tenant.Scope{CompanyID: "c1"})
	waitSettled(t, sched, "companies/c1")
	time.Sleep(20 * time.Millisecond)
	before := fs.totalListCalls()

	require.NoError(t, sched.RefreshAll(context.Background()))

	assert.Equal(t, before, fs.totalListCalls(),
		"an immediate repeated refresh must perform zero remote reads")
}

func TestRefreshAllWithoutScope(t *testing.T) {
	fs := newFakeStore()
	sched, _ := newTestScheduler(fs, time.Hour)

	assert.ErrorIs(t, sched.RefreshAll(context.Background()), ErrPathUnresolved)
	assert.ErrorIs(t, sched.RefreshKind(context.Background(), model.KindBill, true), ErrPathUnresolved)
}

func TestRefreshKindPicksUpWrites(t *testing.T) {
	fs := newFakeStore()
	sched, state := newTestScheduler(fs, time.Hour)

	sched.OnScopeChange(tenant.Scope{CompanyID: "c1"})
	waitSettled(t, sched, "companies/c1")

	_, err := fs.Create(context.Background(), "companies/c1", model.KindBill, model.Record{ID: "b-new"})
	require.NoError(t, err)

	sched.Invalidate(model.KindBill)
	require.NoError(t, sched.RefreshKind(context.Background(), model.KindBill, false))

	got := state.Collection(model.KindBill)
	require.Len(t, got, 1)
	assert.Equal(t, "b-new", got[0].ID)
}

func TestSchedulerOutageKeepsStaleDataAndFlagsError(t *testing.T) {
	fs := newFakeStore()
	fs.mem.Seed("companies/c1", model.KindBill, model.Record{ID: "b1"})
	sched, state := newTestScheduler(fs, 10*time.Millisecond)

	sched.OnScopeChange(tenant.Scope{CompanyID: "c1"})
	waitSettled(t, sched, "companies/c1")

	time.Sleep(20 * time.Millisecond) // let every cache entry expire
	fs.setFailing(true)
	require.NoError(t, sched.RefreshAll(context.Background()))

	snap := state.Snapshot()
	assert.Equal(t, "failed to refresh", snap.LastError)
	require.Len(t, snap.Collections[model.KindBill], 1, "stale data survives a full outage")
	assert.Equal(t, "b1", snap.Collections[model.KindBill][0].ID)
}

func TestSchedulerRunStopsOnContextCancel(t *testing.T) {
	fs := newFakeStore()
	sched, _ := newTestScheduler(fs, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	scopes := make(chan tenant.Scope)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx, scopes)
	}()

	scopes <- tenant.Scope{CompanyID: "c1"}
	waitSettled(t, sched, "companies/c1")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
