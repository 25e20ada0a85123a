package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

func recs(ids ...string) []model.Record {
	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Record{ID: id})
	}
	return out
}

// countingLoad returns a LoadFunc that serves the given result and counts
// how often it was actually invoked.
func countingLoad(result []model.Record, err error) (LoadFunc, *int) {
	calls := 0
	return func(context.Context) ([]model.Record, error) {
		calls++
		return result, err
	}, &calls
}

func TestFetchWithinTTLServedFromCache(t *testing.T) {
	f := NewFetcher(5 * time.Second)
	load, calls := countingLoad(recs("a"), nil)

	got, err := f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, 1, *calls, "fresh entry must be served without touching the store")
}

func TestFetchExpiredEntryReloads(t *testing.T) {
	f := NewFetcher(5 * time.Second)
	now := time.Now()
	f.SetClock(func() time.Time { return now })
	load, calls := countingLoad(recs("a"), nil)

	_, err := f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	require.NoError(t, err)

	now = now.Add(6 * time.Second)
	_, err = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
}

func TestFetchForceBypassesFreshEntry(t *testing.T) {
	f := NewFetcher(time.Hour)
	load, calls := countingLoad(recs("a"), nil)

	_, _ = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	_, _ = f.Fetch(context.Background(), model.KindBill, "companies/c1", true, load)

	assert.Equal(t, 2, *calls)
}

func TestFetchKeysAreScopedByKindAndPath(t *testing.T) {
	f := NewFetcher(time.Hour)
	load, calls := countingLoad(recs("a"), nil)

	_, _ = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	_, _ = f.Fetch(context.Background(), model.KindBill, "companies/c2", false, load)
	_, _ = f.Fetch(context.Background(), model.KindTable, "companies/c1", false, load)

	assert.Equal(t, 3, *calls, "entries from different scopes or kinds must not collide")
}

func TestFetchFailurePreservesStaleEntry(t *testing.T) {
	f := NewFetcher(time.Nanosecond) // everything expires immediately
	okLoad, _ := countingLoad(recs("a", "b"), nil)
	failLoad, _ := countingLoad(nil, errors.New("store down"))

	_, err := f.Fetch(context.Background(), model.KindBill, "companies/c1", false, okLoad)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, failLoad)
	require.Error(t, err)

	stale, ok := f.Stale(model.KindBill, "companies/c1")
	require.True(t, ok, "failed reload must keep the previous entry")
	assert.Len(t, stale, 2)
}

func TestInvalidateDropsSingleEntry(t *testing.T) {
	f := NewFetcher(time.Hour)
	load, calls := countingLoad(recs("a"), nil)

	_, _ = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	_, _ = f.Fetch(context.Background(), model.KindTable, "companies/c1", false, load)
	f.Invalidate(model.KindBill, "companies/c1")

	_, _ = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)
	_, _ = f.Fetch(context.Background(), model.KindTable, "companies/c1", false, load)

	assert.Equal(t, 3, *calls, "only the invalidated entry reloads")
}

func TestResetDropsEverything(t *testing.T) {
	f := NewFetcher(time.Hour)
	load, _ := countingLoad(recs("a"), nil)
	_, _ = f.Fetch(context.Background(), model.KindBill, "companies/c1", false, load)

	f.Reset()

	_, ok := f.Stale(model.KindBill, "companies/c1")
	assert.False(t, ok)
}
