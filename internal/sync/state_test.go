package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

func TestZeroSnapshot(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	assert.False(t, snap.Initialized)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.LastError)
	assert.Empty(t, snap.Collections)
}

func TestSetLoadingClearsError(t *testing.T) {
	s := NewStore()
	s.SetError("failed to refresh")
	s.SetLoading()

	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.LastError)
}

func TestSetErrorClearsLoadingKeepsData(t *testing.T) {
	s := NewStore()
	s.SetCollection(model.KindBill, []model.Record{{ID: "b1"}})
	s.SetLoading()
	s.SetError("failed to refresh")

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "failed to refresh", snap.LastError)
	assert.Len(t, snap.Collections[model.KindBill], 1, "existing data stays visible on error")
}

func TestMergePartialIsAtomicPerPhase(t *testing.T) {
	s := NewStore()
	s.SetLoading()
	s.MergePartial("companies/c1", map[model.EntityKind][]model.Record{
		model.KindBill:  {{ID: "b1"}},
		model.KindTable: {{ID: "t1"}, {ID: "t2"}},
	})

	snap := s.Snapshot()
	assert.True(t, snap.Initialized)
	assert.False(t, snap.Loading)
	assert.Equal(t, "companies/c1", snap.Path)
	assert.Len(t, snap.Collections[model.KindBill], 1)
	assert.Len(t, snap.Collections[model.KindTable], 2)
}

func TestMergePartialLeavesOtherKindsUntouched(t *testing.T) {
	s := NewStore()
	s.MergePartial("companies/c1", map[model.EntityKind][]model.Record{
		model.KindBill: {{ID: "b1"}},
	})
	s.MergePartial("companies/c1", map[model.EntityKind][]model.Record{
		model.KindDiscount: {{ID: "d1"}},
	})

	snap := s.Snapshot()
	assert.Len(t, snap.Collections[model.KindBill], 1, "background phase must not clobber critical data")
	assert.Len(t, snap.Collections[model.KindDiscount], 1)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.SetCollection(model.KindBill, []model.Record{{ID: "b1"}})

	snap := s.Snapshot()
	snap.Collections[model.KindBill][0].ID = "mutated"
	snap.Collections[model.KindTable] = []model.Record{{ID: "t1"}}

	fresh := s.Snapshot()
	require.Len(t, fresh.Collections[model.KindBill], 1)
	assert.Equal(t, "b1", fresh.Collections[model.KindBill][0].ID)
	assert.NotContains(t, fresh.Collections, model.KindTable)
}

func TestClearAll(t *testing.T) {
	s := NewStore()
	s.MergePartial("companies/c1", map[model.EntityKind][]model.Record{
		model.KindBill: {{ID: "b1"}},
	})
	s.ClearAll()

	snap := s.Snapshot()
	assert.False(t, snap.Initialized)
	assert.Empty(t, snap.Collections)
	assert.Empty(t, snap.Path)
}
