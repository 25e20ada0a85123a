package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/bill"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/store"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/sync"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/tenant"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/worker"
)

var (
	ErrUnknownKind  = errors.New("unknown entity kind")
	ErrBillNotFound = errors.New("bill not found")
)

// PosService is the action surface exposed to UI consumers: the snapshot
// read view, refresh triggers, generic record CRUD, and the bill operations.
type PosService interface {
	Snapshot() sync.Snapshot
	Scope() tenant.Scope
	SetScope(scope tenant.Scope) error

	RefreshAll(ctx context.Context) error
	Refresh(ctx context.Context, kind model.EntityKind) error

	CreateRecord(ctx context.Context, kind model.EntityKind, data json.RawMessage, actor string) (model.Record, error)
	UpdateRecord(ctx context.Context, kind model.EntityKind, id string, data json.RawMessage, actor string) error
	DeleteRecord(ctx context.Context, kind model.EntityKind, id string, actor string) error

	OpenBill(ctx context.Context, tableID, actor string) (*model.Bill, error)
	AddItem(ctx context.Context, billID string, p model.Product, quantity int) (*model.Bill, error)
	AdjustItemQuantity(ctx context.Context, billID, itemID string, delta int) (*model.Bill, error)
	RemoveItem(ctx context.Context, billID, itemID string) (*model.Bill, error)
	ApplyCorrection(ctx context.Context, billID string, c *model.Correction, actor string) (*model.Correction, error)
	TerminateBill(ctx context.Context, billID string, status model.BillStatus) (*model.Bill, error)
}

type posService struct {
	log      zerolog.Logger
	state    *sync.Store
	sched    *sync.Scheduler
	remote   store.RemoteStore
	provider *tenant.Provider
	engine   *bill.Engine
	rules    bill.RuleSet
	// dispatcher is nil-tolerant: unit tests run without redis.
	dispatcher *worker.Dispatcher
}

func NewPosService(
	state *sync.Store,
	sched *sync.Scheduler,
	remote store.RemoteStore,
	provider *tenant.Provider,
	engine *bill.Engine,
	rules bill.RuleSet,
	dispatcher *worker.Dispatcher,
	log zerolog.Logger,
) PosService {
	if rules == nil {
		rules = bill.DefaultRules()
	}
	return &posService{
		log:        log,
		state:      state,
		sched:      sched,
		remote:     remote,
		provider:   provider,
		engine:     engine,
		rules:      rules,
		dispatcher: dispatcher,
	}
}

func (s *posService) Snapshot() sync.Snapshot { return s.state.Snapshot() }

func (s *posService) Scope() tenant.Scope { return s.provider.Scope() }

// SetScope replaces the tenant selection wholesale. The scheduler picks the
// change up through its subscription; callers observe the new data once the
// debounced pass settles.
func (s *posService) SetScope(scope tenant.Scope) error {
	return s.provider.Replace(scope)
}

func (s *posService) RefreshAll(ctx context.Context) error {
	return s.sched.RefreshAll(ctx)
}

func (s *posService) Refresh(ctx context.Context, kind model.EntityKind) error {
	if !model.ValidKind(string(kind)) {
		return ErrUnknownKind
	}
	return s.sched.RefreshKind(ctx, kind, false)
}

// ── Generic record CRUD ──────────────────────────────────────────────────────
// Writes go directly through the remote store at the primary (most specific)
// path, then trigger only the single-kind refresh — never a full
// resynchronization. Failed writes are surfaced as-is; the in-memory state is
// not rolled back, the caller re-triggers a refresh instead.

func (s *posService) CreateRecord(ctx context.Context, kind model.EntityKind, data json.RawMessage, actor string) (model.Record, error) {
	if !model.ValidKind(string(kind)) {
		return model.Record{}, ErrUnknownKind
	}
	path, err := s.sched.PrimaryPath()
	if err != nil {
		return model.Record{}, err
	}

	now := model.NowMillis()
	rec := model.Record{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now, Data: data}
	if _, err := s.remote.Create(ctx, path, kind, rec); err != nil {
		return model.Record{}, fmt.Errorf("create %s: %w", kind, err)
	}

	s.afterWrite(ctx, kind, rec.ID, "create", path, actor)
	return rec, nil
}

func (s *posService) UpdateRecord(ctx context.Context, kind model.EntityKind, id string, data json.RawMessage, actor string) error {
	if !model.ValidKind(string(kind)) {
		return ErrUnknownKind
	}
	path, err := s.sched.PrimaryPath()
	if err != nil {
		return err
	}
	rec := model.Record{ID: id, UpdatedAt: model.NowMillis(), Data: data}
	if err := s.remote.Update(ctx, path, kind, id, rec); err != nil {
		return fmt.Errorf("update %s/%s: %w", kind, id, err)
	}
	s.afterWrite(ctx, kind, id, "update", path, actor)
	return nil
}

func (s *posService) DeleteRecord(ctx context.Context, kind model.EntityKind, id string, actor string) error {
	if !model.ValidKind(string(kind)) {
		return ErrUnknownKind
	}
	path, err := s.sched.PrimaryPath()
	if err != nil {
		return err
	}
	if err := s.remote.Delete(ctx, path, kind, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	s.afterWrite(ctx, kind, id, "delete", path, actor)
	return nil
}

// afterWrite invalidates the cache entry for the mutated kind, re-runs the
// single-kind probe, and emits the audit event.
func (s *posService) afterWrite(ctx context.Context, kind model.EntityKind, id, action, path, actor string) {
	s.sched.Invalidate(kind)
	if err := s.sched.RefreshKind(ctx, kind, false); err != nil {
		s.log.Warn().Str("kind", string(kind)).Err(err).Msg("post-write refresh failed")
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueAudit(ctx, worker.AuditEvent{
			Kind:     string(kind),
			RecordID: id,
			Action:   action,
			Path:     path,
			Actor:    actor,
			At:       model.NowMillis(),
		})
	}
}

// ── Bill operations ──────────────────────────────────────────────────────────

func (s *posService) OpenBill(ctx context.Context, tableID, actor string) (*model.Bill, error) {
	path, err := s.sched.PrimaryPath()
	if err != nil {
		return nil, err
	}

	b := s.engine.NewBill(tableID)
	rec, err := billRecord(b)
	if err != nil {
		return nil, err
	}
	if _, err := s.remote.Create(ctx, path, model.KindBill, rec); err != nil {
		return nil, fmt.Errorf("open bill: %w", err)
	}
	s.afterWrite(ctx, model.KindBill, b.ID, "create", path, actor)
	return b, nil
}

func (s *posService) AddItem(ctx context.Context, billID string, p model.Product, quantity int) (*model.Bill, error) {
	return s.mutateBill(ctx, billID, func(b *model.Bill) error {
		return s.engine.AddItem(b, p, quantity)
	})
}

func (s *posService) AdjustItemQuantity(ctx context.Context, billID, itemID string, delta int) (*model.Bill, error) {
	return s.mutateBill(ctx, billID, func(b *model.Bill) error {
		return s.engine.AdjustQuantity(b, itemID, delta)
	})
}

func (s *posService) RemoveItem(ctx context.Context, billID, itemID string) (*model.Bill, error) {
	return s.mutateBill(ctx, billID, func(b *model.Bill) error {
		return s.engine.RemoveItem(b, itemID)
	})
}

func (s *posService) TerminateBill(ctx context.Context, billID string, status model.BillStatus) (*model.Bill, error) {
	return s.mutateBill(ctx, billID, func(b *model.Bill) error {
		return s.engine.Terminate(b, status)
	})
}

// ApplyCorrection validates and applies a correction to the target bill,
// persists both the bill and the correction record, and enqueues pending
// corrections for back-office review.
func (s *posService) ApplyCorrection(ctx context.Context, billID string, c *model.Correction, actor string) (*model.Correction, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.AppliedBy = actor

	if _, err := s.mutateBill(ctx, billID, func(b *model.Bill) error {
		return s.engine.ApplyCorrection(b, c, s.rules)
	}); err != nil {
		return nil, err
	}

	path, err := s.sched.PrimaryPath()
	if err != nil {
		return nil, err
	}
	rec, err := model.NewRecord(c.ID, c)
	if err != nil {
		return nil, err
	}
	if _, err := s.remote.Create(ctx, path, model.KindCorrection, rec); err != nil {
		return nil, fmt.Errorf("record correction: %w", err)
	}
	s.afterWrite(ctx, model.KindCorrection, c.ID, "create", path, actor)

	if c.Status == model.CorrectionPending && s.dispatcher != nil {
		_ = s.dispatcher.EnqueueCorrectionReview(ctx, worker.CorrectionReviewPayload{
			Path:         path,
			CorrectionID: c.ID,
			Amount:       c.Amount.String(),
		})
	}
	return c, nil
}

// mutateBill loads the bill from the primary path, applies fn, writes the
// result back and refreshes the bills collection. The engine's recomputation
// keeps the derived totals exact on every path through here.
func (s *posService) mutateBill(ctx context.Context, billID string, fn func(*model.Bill) error) (*model.Bill, error) {
	path, err := s.sched.PrimaryPath()
	if err != nil {
		return nil, err
	}

	recs, err := s.remote.List(ctx, path, model.KindBill)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	rec, ok := model.FindRecord(recs, billID)
	if !ok {
		return nil, ErrBillNotFound
	}

	var b model.Bill
	if err := rec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bill %s: %w", billID, err)
	}
	if b.ID == "" {
		b.ID = billID
	}

	if err := fn(&b); err != nil {
		return nil, err
	}

	updated, err := rec.WithPayload(&b)
	if err != nil {
		return nil, err
	}
	if err := s.remote.Update(ctx, path, model.KindBill, billID, updated); err != nil {
		return nil, fmt.Errorf("store bill %s: %w", billID, err)
	}
	s.afterWrite(ctx, model.KindBill, billID, "update", path, "")
	return &b, nil
}

func billRecord(b *model.Bill) (model.Record, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return model.Record{}, err
	}
	return model.Record{ID: b.ID, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt, Data: data}, nil
}
