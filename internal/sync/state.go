// Package sync keeps the shared in-memory POS snapshot consistent with the
// remote store: a state store with atomic transitions, and a scheduler that
// debounces scope changes and runs two-phase (critical, then background)
// synchronization passes.
package sync

import (
	"sync"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// Snapshot is the single shared view of all POS entity collections plus the
// loading/error flags. Consumers only ever observe fully-applied snapshots.
type Snapshot struct {
	Collections map[model.EntityKind][]model.Record `json:"collections"`
	Loading     bool                                `json:"loading"`
	Initialized bool                                `json:"initialized"`
	LastError   string                              `json:"lastError,omitempty"`
	// Path is the primary resolved path the snapshot was loaded from.
	Path string `json:"path,omitempty"`
}

// Store owns the canonical in-memory copy of every collection. It is mutated
// only through the transition methods below; each transition is a total
// function from old snapshot to new snapshot applied under the write lock,
// so no reader observes a half-merged set of kinds.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStore() *Store {
	return &Store{snap: Snapshot{Collections: make(map[model.EntityKind][]model.Record)}}
}

// Snapshot returns a copy of the current state. The collection map and slice
// headers are copied; records are treated as immutable documents.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.copy()
}

func (sn Snapshot) copy() Snapshot {
	out := sn
	out.Collections = make(map[model.EntityKind][]model.Record, len(sn.Collections))
	for k, recs := range sn.Collections {
		cp := make([]model.Record, len(recs))
		copy(cp, recs)
		out.Collections[k] = cp
	}
	return out
}

// Collection returns a copy of one kind's records.
func (s *Store) Collection(kind model.EntityKind) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.snap.Collections[kind]
	out := make([]model.Record, len(src))
	copy(out, src)
	return out
}

// SetLoading marks a synchronization pass in flight and clears the previous
// error.
func (s *Store) SetLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Loading = true
	s.snap.LastError = ""
}

// SetError records a refresh failure. It always also clears the loading flag;
// whatever data is already present stays visible.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Loading = false
	s.snap.LastError = msg
}

// SetCollection replaces a single kind. Used by single-entity refreshes after
// CRUD writes.
func (s *Store) SetCollection(kind model.EntityKind, recs []model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Collections[kind] = recs
}

// MergePartial commits the results of one phase in a single transition:
// every given kind is replaced at once, the snapshot is tagged with the path
// it was loaded from, and the store is marked initialized with loading
// cleared. Kinds not present in cols are left untouched.
func (s *Store) MergePartial(path string, cols map[model.EntityKind][]model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, recs := range cols {
		s.snap.Collections[k] = recs
	}
	s.snap.Path = path
	s.snap.Initialized = true
	s.snap.Loading = false
}

// ClearAll resets the store to its zero snapshot. Used when the tenant scope
// becomes unresolved.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Collections: make(map[model.EntityKind][]model.Record)}
}
