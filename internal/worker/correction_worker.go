package worker

// Processes correction-review jobs from QueueCorrections. Corrections whose
// amount sits under the auto-approval limit are approved straight away; the
// rest stay pending for a manager decision in the back office.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/store"
)

// CorrectionReviewPayload is the job envelope sent to QueueCorrections.
type CorrectionReviewPayload struct {
	Path         string `json:"path"`
	CorrectionID string `json:"correction_id"`
	Amount       string `json:"amount"` // decimal string
}

// CorrectionWorker reviews pending corrections against the auto-approval
// limit and persists the outcome through the remote store.
type CorrectionWorker struct {
	remote           store.RemoteStore
	autoApproveLimit decimal.Decimal
}

func NewCorrectionWorker(remote store.RemoteStore, autoApproveLimit decimal.Decimal) *CorrectionWorker {
	return &CorrectionWorker{remote: remote, autoApproveLimit: autoApproveLimit}
}

func (w *CorrectionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CorrectionReviewPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("correction_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		log.Error().Str("amount", payload.Amount).Msg("correction_worker: invalid amount")
		return nil
	}

	if amount.GreaterThan(w.autoApproveLimit) {
		log.Info().
			Str("correction_id", payload.CorrectionID).
			Str("amount", amount.String()).
			Msg("correction_worker: above auto-approval limit, left pending")
		return nil
	}

	recs, err := w.remote.List(ctx, payload.Path, model.KindCorrection)
	if err != nil {
		return fmt.Errorf("correction_worker: list corrections: %w", err)
	}
	rec, ok := model.FindRecord(recs, payload.CorrectionID)
	if !ok {
		return fmt.Errorf("correction_worker: correction %s not found", payload.CorrectionID)
	}

	var c model.Correction
	if err := rec.Decode(&c); err != nil {
		return fmt.Errorf("correction_worker: decode: %w", err)
	}
	if c.Status != model.CorrectionPending {
		return nil // already reviewed
	}
	c.Status = model.CorrectionApproved

	updated, err := rec.WithPayload(c)
	if err != nil {
		return err
	}
	if err := w.remote.Update(ctx, payload.Path, model.KindCorrection, rec.ID, updated); err != nil {
		return fmt.Errorf("correction_worker: update: %w", err)
	}

	log.Info().
		Str("correction_id", payload.CorrectionID).
		Str("amount", amount.String()).
		Msg("correction_worker: auto-approved")
	return nil
}
