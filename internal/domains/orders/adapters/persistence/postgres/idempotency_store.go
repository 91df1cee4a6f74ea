package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

var errIdempotencyStoreUnset = errors.New("postgres idempotency store not configured")

// IdempotencyStore keeps retry keys in the order_idempotency_keys table.
// Rows are removed by PurgeRecordedBefore, see cmd/idempotency-purger.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// IdempotencyKeyRecord is the row behind one retry key. OrderID stays empty until the
// reserving request completes.
type IdempotencyKeyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	Fingerprint string    `gorm:"column:fingerprint;size:64;not null"`
	OrderID     string    `gorm:"column:order_id;size:64;not null;default:''"`
	RecordedAt  time.Time `gorm:"column:recorded_at;not null;index"`
}

func (IdempotencyKeyRecord) TableName() string { return "order_idempotency_keys" }

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*ports.IdempotencyEntry, error) {
	if s == nil || s.db == nil {
		return nil, errIdempotencyStoreUnset
	}
	var row IdempotencyKeyRecord
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry := row.entry()
	return &entry, nil
}

// Reserve inserts with ON CONFLICT DO NOTHING so concurrent retries settle on the first row.
func (s *IdempotencyStore) Reserve(ctx context.Context, entry ports.IdempotencyEntry) (*ports.IdempotencyEntry, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, errIdempotencyStoreUnset
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	row := IdempotencyKeyRecord{
		Key:         entry.Key,
		Fingerprint: entry.Fingerprint,
		RecordedAt:  entry.RecordedAt.UTC(),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		reserved := row.entry()
		return &reserved, true, nil
	}
	stored, err := s.Lookup(ctx, entry.Key)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, errors.New("idempotency key vanished while being claimed")
	}
	return stored, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if s == nil || s.db == nil {
		return errIdempotencyStoreUnset
	}
	result := s.db.WithContext(ctx).Model(&IdempotencyKeyRecord{}).
		Where("key = ? AND order_id = ''", key).
		Update("order_id", orderID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("idempotency key %q is not reserved", key)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return errIdempotencyStoreUnset
	}
	return s.db.WithContext(ctx).Where("key = ? AND order_id = ''", key).Delete(&IdempotencyKeyRecord{}).Error
}

// PurgeRecordedBefore deletes keys recorded at or before cutoff, pending ones included,
// and reports how many went.
func (s *IdempotencyStore) PurgeRecordedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errIdempotencyStoreUnset
	}
	result := s.db.WithContext(ctx).Where("recorded_at <= ?", cutoff.UTC()).Delete(&IdempotencyKeyRecord{})
	return result.RowsAffected, result.Error
}

func (r IdempotencyKeyRecord) entry() ports.IdempotencyEntry {
	return ports.IdempotencyEntry{
		Key:         r.Key,
		Fingerprint: r.Fingerprint,
		OrderID:     r.OrderID,
		RecordedAt:  r.RecordedAt.UTC(),
	}
}
