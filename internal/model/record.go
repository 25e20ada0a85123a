package model

import (
	"encoding/json"
	"time"
)

// Record is the storage envelope for every POS entity. Only the id and the
// two timestamps are structural; the payload stays opaque for kinds the
// engine never computes on (groups, courses, floor plans, …). Kinds with
// derived fields (bills, corrections) decode Data into their typed structs.
type Record struct {
	ID        string          `json:"id"`
	CreatedAt int64           `json:"createdAt"` // unix milliseconds
	UpdatedAt int64           `json:"updatedAt"` // unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NowMillis returns the current time as unix milliseconds, the timestamp
// format used by all record envelopes.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Decode unmarshals the record payload into v.
func (r Record) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// NewRecord builds a record envelope around v with fresh timestamps.
func NewRecord(id string, v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, err
	}
	now := NowMillis()
	return Record{ID: id, CreatedAt: now, UpdatedAt: now, Data: data}, nil
}

// WithPayload returns a copy of r carrying a re-encoded payload and a bumped
// UpdatedAt. CreatedAt is preserved.
func (r Record) WithPayload(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, err
	}
	r.Data = data
	r.UpdatedAt = NowMillis()
	return r, nil
}

// FindRecord returns the record with the given id, or false.
func FindRecord(recs []Record, id string) (Record, bool) {
	for _, r := range recs {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}
