package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/store"
)

const reviewPath = "companies/c1/sites/s1"

func seedCorrection(t *testing.T, mem *store.MemStore, c model.Correction) {
	t.Helper()
	rec, err := model.NewRecord(c.ID, c)
	require.NoError(t, err)
	mem.Seed(reviewPath, model.KindCorrection, rec)
}

func payload(t *testing.T, p CorrectionReviewPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func loadCorrection(t *testing.T, mem *store.MemStore, id string) model.Correction {
	t.Helper()
	recs, err := mem.List(context.Background(), reviewPath, model.KindCorrection)
	require.NoError(t, err)
	rec, ok := model.FindRecord(recs, id)
	require.True(t, ok)
	var c model.Correction
	require.NoError(t, rec.Decode(&c))
	return c
}

func TestProcessAutoApprovesUnderLimit(t *testing.T) {
	mem := store.NewMemStore()
	seedCorrection(t, mem, model.Correction{
		ID: "cor-1", Type: model.CorrectionRefund, Status: model.CorrectionPending,
		Amount: decimal.RequireFromString("15"),
	})
	w := NewCorrectionWorker(mem, decimal.NewFromInt(20))

	err := w.Process(context.Background(), payload(t, CorrectionReviewPayload{
		Path: reviewPath, CorrectionID: "cor-1", Amount: "15",
	}))
	require.NoError(t, err)

	assert.Equal(t, model.CorrectionApproved, loadCorrection(t, mem, "cor-1").Status)
}

func TestProcessLeavesLargeAmountsPending(t *testing.T) {
	mem := store.NewMemStore()
	seedCorrection(t, mem, model.Correction{
		ID: "cor-2", Type: model.CorrectionRefund, Status: model.CorrectionPending,
		Amount: decimal.RequireFromString("45"),
	})
	w := NewCorrectionWorker(mem, decimal.NewFromInt(20))

	err := w.Process(context.Background(), payload(t, CorrectionReviewPayload{
		Path: reviewPath, CorrectionID: "cor-2", Amount: "45",
	}))
	require.NoError(t, err)

	assert.Equal(t, model.CorrectionPending, loadCorrection(t, mem, "cor-2").Status)
}

func TestProcessSkipsAlreadyReviewed(t *testing.T) {
	mem := store.NewMemStore()
	seedCorrection(t, mem, model.Correction{
		ID: "cor-3", Status: model.CorrectionRejected,
		Amount: decimal.RequireFromString("5"),
	})
	w := NewCorrectionWorker(mem, decimal.NewFromInt(20))

	err := w.Process(context.Background(), payload(t, CorrectionReviewPayload{
		Path: reviewPath, CorrectionID: "cor-3", Amount: "5",
	}))
	require.NoError(t, err)

	assert.Equal(t, model.CorrectionRejected, loadCorrection(t, mem, "cor-3").Status)
}

func TestProcessMissingCorrectionIsRetryable(t *testing.T) {
	w := NewCorrectionWorker(store.NewMemStore(), decimal.NewFromInt(20))

	err := w.Process(context.Background(), payload(t, CorrectionReviewPayload{
		Path: reviewPath, CorrectionID: "ghost", Amount: "5",
	}))
	assert.Error(t, err)
}

func TestProcessMalformedPayloadNotRetried(t *testing.T) {
	w := NewCorrectionWorker(store.NewMemStore(), decimal.NewFromInt(20))

	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{garbage`)))
	assert.NoError(t, w.Process(context.Background(), payload(t, CorrectionReviewPayload{
		Path: reviewPath, CorrectionID: "x", Amount: "not-a-number",
	})))
}
