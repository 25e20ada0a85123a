package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// MemStore is an in-memory RemoteStore used by tests and by the
// STORE_DRIVER=memory development mode. Insertion order is preserved per
// (path, kind) so List matches the durable adapter's ordering.
type MemStore struct {
	mu   sync.Mutex
	data map[memKey][]model.Record
}

type memKey struct {
	path string
	kind model.EntityKind
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[memKey][]model.Record)}
}

func (s *MemStore) List(_ context.Context, path string, kind model.EntityKind) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.data[memKey{path, kind}]
	out := make([]model.Record, len(src))
	copy(out, src)
	return out, nil
}

func (s *MemStore) Create(_ context.Context, path string, kind model.EntityKind, rec model.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = model.NowMillis()
	}
	if rec.UpdatedAt == 0 {
		rec.UpdatedAt = rec.CreatedAt
	}
	k := memKey{path, kind}
	s.data[k] = append(s.data[k], rec)
	return rec.ID, nil
}

func (s *MemStore) Update(_ context.Context, path string, kind model.EntityKind, id string, rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.data[memKey{path, kind}]
	for i := range recs {
		if recs[i].ID == id {
			recs[i].Data = rec.Data
			recs[i].UpdatedAt = model.NowMillis()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) Delete(_ context.Context, path string, kind model.EntityKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey{path, kind}
	recs := s.data[k]
	for i := range recs {
		if recs[i].ID == id {
			s.data[k] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Seed inserts records without touching their timestamps. Test helper.
func (s *MemStore) Seed(path string, kind model.EntityKind, recs ...model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey{path, kind}
	s.data[k] = append(s.data[k], recs...)
}

var _ RemoteStore = (*MemStore)(nil)
