// Package idempotency guards one-shot actions with a Redis SetNX. The
// checkout service uses it so a terminal event for one payment code is
// published at most once, even when duplicate tabs observe the same
// payment concurrently.
package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(paymentCode string) string {
	return "idem:checkout:" + paymentCode
}

// Seen marks paymentCode as handled and reports whether it already was.
// The first caller gets false, every caller within the TTL gets true.
func (s *Store) Seen(ctx context.Context, paymentCode string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.Key(paymentCode), "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
