package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

const (
	keyPrefix  = "orders:idempotency:"
	defaultTTL = 24 * time.Hour
)

var errStoreUnset = errors.New("redis idempotency store not configured")

// IdempotencyStore keeps retry keys in Redis; each key expires ttl after it was reserved,
// which also frees reservations left behind by a crashed request.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore uses 24h when ttl is not positive.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

type storedEntry struct {
	Fingerprint string    `json:"fingerprint"`
	OrderID     string    `json:"orderId,omitempty"`
	RecordedAt  time.Time `json:"recordedAt"`
}

func (e storedEntry) toPort(key string) *ports.IdempotencyEntry {
	return &ports.IdempotencyEntry{Key: key, Fingerprint: e.Fingerprint, OrderID: e.OrderID, RecordedAt: e.RecordedAt}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*ports.IdempotencyEntry, error) {
	if s == nil || s.client == nil {
		return nil, errStoreUnset
	}
	stored, err := readEntry(ctx, s.client, key)
	if err != nil || stored == nil {
		return nil, err
	}
	return stored.toPort(key), nil
}

// Reserve claims the key with SET NX so only the first writer wins.
func (s *IdempotencyStore) Reserve(ctx context.Context, entry ports.IdempotencyEntry) (*ports.IdempotencyEntry, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, errStoreUnset
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	pending := storedEntry{Fingerprint: entry.Fingerprint, RecordedAt: entry.RecordedAt}
	payload, err := json.Marshal(pending)
	if err != nil {
		return nil, false, err
	}
	claimed, err := s.client.SetNX(ctx, keyPrefix+entry.Key, payload, s.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if claimed {
		return pending.toPort(entry.Key), true, nil
	}
	stored, err := s.Lookup(ctx, entry.Key)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, errors.New("idempotency key expired while being claimed")
	}
	return stored, false, nil
}

// Complete rewrites a pending entry with its order id, keeping the remaining TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if s == nil || s.client == nil {
		return errStoreUnset
	}
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := readEntry(ctx, tx, key)
		if err != nil {
			return err
		}
		if stored == nil || stored.OrderID != "" {
			return fmt.Errorf("idempotency key %q is not reserved", key)
		}
		stored.OrderID = orderID
		payload, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, keyPrefix+key, payload, redis.SetArgs{Mode: "XX", KeepTTL: true})
			return nil
		})
		return err
	}, keyPrefix+key)
}

// Release deletes the key if its request never completed.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return errStoreUnset
	}
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := readEntry(ctx, tx, key)
		if err != nil || stored == nil || stored.OrderID != "" {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, keyPrefix+key)
			return nil
		})
		return err
	}, keyPrefix+key)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readEntry(ctx context.Context, c getter, key string) (*storedEntry, error) {
	raw, err := c.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}
