// Package redisstore implements verification record persistence on Redis.
//
// Single-use token consumption relies on GETDEL, which is atomic: concurrent
// consumers of the same token see exactly one value between them. Keys are
// kept past the record's logical expiry for a retention grace so a late
// redeem still reads back as expired rather than absent.
//
// The package covers only the verification half of the identity store; pair
// it with a user store via identity.Split.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abg-ub/better-auth/pkg/identity"
)

const keyPrefix = "verification:"

// retentionGrace keeps consumed-distinguishable-from-expired working: the key
// outlives its logical expiry by this much before Redis drops it.
const retentionGrace = time.Hour

type record struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store implements identity.VerificationStore on a Redis client.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) CreateVerification(ctx context.Context, rec *identity.VerificationRecord) error {
	data, err := json.Marshal(record{
		Value:     rec.Value,
		ExpiresAt: rec.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode verification: %w", err)
	}

	ttl := time.Until(rec.ExpiresAt) + retentionGrace
	return s.client.Set(ctx, keyPrefix+rec.Identifier, data, ttl).Err()
}

func (s *Store) ConsumeVerification(ctx context.Context, token string) (*identity.VerificationRecord, error) {
	data, err := s.client.GetDel(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, identity.ErrVerificationNotFound
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}

	return &identity.VerificationRecord{
		Identifier: token,
		Value:      rec.Value,
		ExpiresAt:  rec.ExpiresAt,
	}, nil
}
