package worker

// Processes mutation audit events from QueueAudit. Every CRUD write against
// the remote store produces one event; the worker emits the structured trail.

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// AuditEvent describes one CRUD mutation against the remote store.
type AuditEvent struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	Action   string `json:"action"` // create | update | delete
	Path     string `json:"path"`
	Actor    string `json:"actor,omitempty"`
	At       int64  `json:"at"` // unix milliseconds
}

// AuditWorker writes the mutation trail.
type AuditWorker struct{}

func NewAuditWorker() *AuditWorker { return &AuditWorker{} }

func (w *AuditWorker) Process(_ context.Context, raw json.RawMessage) error {
	var ev AuditEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return nil
	}
	log.Info().
		Str("kind", ev.Kind).
		Str("record_id", ev.RecordID).
		Str("action", ev.Action).
		Str("path", ev.Path).
		Str("actor", ev.Actor).
		Int64("at", ev.At).
		Msg("audit: mutation")
	return nil
}
