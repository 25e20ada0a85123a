package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ShraddheyWamanSatpute/HMRC-addition-sub001/internal/model"
)

// storedRecord is the GORM row shape for the document table. One table holds
// every kind; (path, kind, record_id) is the logical key.
type storedRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Path      string `gorm:"size:512;not null;uniqueIndex:idx_pos_records_key,priority:1;index:idx_pos_records_list,priority:1"`
	Kind      string `gorm:"size:64;not null;uniqueIndex:idx_pos_records_key,priority:2;index:idx_pos_records_list,priority:2"`
	RecordID  string `gorm:"size:64;not null;uniqueIndex:idx_pos_records_key,priority:3"`
	Payload   []byte `gorm:"type:jsonb"`
	CreatedMs int64  `gorm:"not null"`
	UpdatedMs int64  `gorm:"not null"`
}

func (storedRecord) TableName() string { return "pos_records" }

// GormStore is the durable RemoteStore adapter backed by Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&storedRecord{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) List(ctx context.Context, path string, kind model.EntityKind) ([]model.Record, error) {
	var rows []storedRecord
	err := s.db.WithContext(ctx).
		Where("path = ? AND kind = ?", path, string(kind)).
		Order("created_ms ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	recs := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, model.Record{
			ID:        row.RecordID,
			CreatedAt: row.CreatedMs,
			UpdatedAt: row.UpdatedMs,
			Data:      json.RawMessage(row.Payload),
		})
	}
	return recs, nil
}

func (s *GormStore) Create(ctx context.Context, path string, kind model.EntityKind, rec model.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = model.NowMillis()
	}
	if rec.UpdatedAt == 0 {
		rec.UpdatedAt = rec.CreatedAt
	}
	row := storedRecord{
		Path:      path,
		Kind:      string(kind),
		RecordID:  rec.ID,
		Payload:   []byte(rec.Data),
		CreatedMs: rec.CreatedAt,
		UpdatedMs: rec.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *GormStore) Update(ctx context.Context, path string, kind model.EntityKind, id string, rec model.Record) error {
	res := s.db.WithContext(ctx).
		Model(&storedRecord{}).
		Where("path = ? AND kind = ? AND record_id = ?", path, string(kind), id).
		Updates(map[string]any{
			"payload":    []byte(rec.Data),
			"updated_ms": model.NowMillis(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, path string, kind model.EntityKind, id string) error {
	res := s.db.WithContext(ctx).
		Where("path = ? AND kind = ? AND record_id = ?", path, string(kind), id).
		Delete(&storedRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ RemoteStore = (*GormStore)(nil)

// IsNotFound reports whether err means the record was missing, regardless of
// which adapter produced it.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
