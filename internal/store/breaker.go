package store

import (
	"context"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/infra"
	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// BreakerStore routes every remote-store call through a circuit breaker.
// While the breaker is open, calls fast-fail with infra.ErrBreakerOpen and the
// scheduler serves stale cache entries instead.
type BreakerStore struct {
	inner   RemoteStore
	breaker *infra.Breaker
}

func WithBreaker(inner RemoteStore, b *infra.Breaker) *BreakerStore {
	return &BreakerStore{inner: inner, breaker: b}
}

// Breaker exposes the underlying breaker for health reporting.
func (s *BreakerStore) Breaker() *infra.Breaker { return s.breaker }

func (s *BreakerStore) List(ctx context.Context, path string, kind model.EntityKind) ([]model.Record, error) {
	var recs []model.Record
	err := s.breaker.Execute(func() error {
		var err error
		recs, err = s.inner.List(ctx, path, kind)
		return err
	})
	return recs, err
}

func (s *BreakerStore) Create(ctx context.Context, path string, kind model.EntityKind, rec model.Record) (string, error) {
	var id string
	err := s.breaker.Execute(func() error {
		var err error
		id, err = s.inner.Create(ctx, path, kind, rec)
		return err
	})
	return id, err
}

func (s *BreakerStore) Update(ctx context.Context, path string, kind model.EntityKind, id string, rec model.Record) error {
	var opErr error
	err := s.breaker.Execute(func() error {
		opErr = s.inner.Update(ctx, path, kind, id, rec)
		// A missing record is a caller problem, not a store outage; it must
		// not count toward tripping the breaker.
		if IsNotFound(opErr) {
			return nil
		}
		return opErr
	})
	if err != nil {
		return err
	}
	return opErr
}

func (s *BreakerStore) Delete(ctx context.Context, path string, kind model.EntityKind, id string) error {
	var opErr error
	err := s.breaker.Execute(func() error {
		opErr = s.inner.Delete(ctx, path, kind, id)
		if IsNotFound(opErr) {
			return nil
		}
		return opErr
	})
	if err != nil {
		return err
	}
	return opErr
}

var _ RemoteStore = (*BreakerStore)(nil)
