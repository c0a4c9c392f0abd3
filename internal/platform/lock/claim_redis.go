// Package lock provides cross-process claims on symbols backed by Redis.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/feature/signals/domain/instrument"
	"signal_backend/internal/feature/signals/usecase"
)

// DefaultPrefix namespaces claim keys.
const DefaultPrefix = "signals:claim"

// ClaimRedis implements usecase.SymbolClaimer using SET NX with a TTL.
type ClaimRedis struct {
	client *redis.Client
	prefix string
	owner  string
}

var _ usecase.SymbolClaimer = (*ClaimRedis)(nil)

// NewClaimRedis creates a new ClaimRedis instance. owner is stored as the key
// value so a claim can be traced back to the process that holds it.
func NewClaimRedis(client *redis.Client, prefix, owner string) *ClaimRedis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ClaimRedis{
		client: client,
		prefix: prefix,
		owner:  owner,
	}
}

// claimKey returns the Redis key for a symbol claim.
func (r *ClaimRedis) claimKey(symbol string) string {
	return fmt.Sprintf("%s:%s", r.prefix, instrument.Normalize(symbol))
}

// Claim takes the symbol for ttl. It reports false when another run holds it.
func (r *ClaimRedis) Claim(ctx context.Context, symbol string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("claim ttl must be positive, got %s", ttl)
	}
	ok, err := r.client.SetNX(ctx, r.claimKey(symbol), r.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", symbol, err)
	}
	return ok, nil
}

// Release drops the claim on symbol. Releasing an unclaimed symbol is a no-op.
func (r *ClaimRedis) Release(ctx context.Context, symbol string) error {
	if err := r.client.Del(ctx, r.claimKey(symbol)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", symbol, err)
	}
	return nil
}
