// Package store defines the narrow port to the remote document store and its
// adapters. The synchronization engine only ever talks to the RemoteStore
// interface; it never assumes a protocol.
package store

import (
	"context"
	"errors"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// ErrNotFound is returned by Update/Delete when the target record does not
// exist under the given path and kind.
var ErrNotFound = errors.New("record not found")

// RemoteStore is the abstract key-path read/write service backing the POS
// module. Implementations carry no retry logic of their own; fallback across
// candidate paths is the scheduler's job.
type RemoteStore interface {
	// List returns every record of one kind under a path, in stored order.
	List(ctx context.Context, path string, kind model.EntityKind) ([]model.Record, error)
	// Create stores a new record and returns its id.
	Create(ctx context.Context, path string, kind model.EntityKind, rec model.Record) (string, error)
	// Update replaces the payload and UpdatedAt of an existing record.
	Update(ctx context.Context, path string, kind model.EntityKind, id string, rec model.Record) error
	// Delete removes a record.
	Delete(ctx context.Context, path string, kind model.EntityKind, id string) error
}
