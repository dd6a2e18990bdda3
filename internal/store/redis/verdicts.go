package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promreg/promregistry/internal/domain"
)

// DefaultVerdictTTL bounds how long a stale verdict survives after the
// health job stops refreshing it (for example across a deploy).
const DefaultVerdictTTL = 1 * time.Hour

// Store mirrors the latest health verdict per account into Redis so
// external tooling can inspect it. The in-memory cache stays the primary
// source; every write here is best effort.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis-backed verdict store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveVerdict stores an account's latest verdict.
func (s *Store) SaveVerdict(ctx context.Context, name string, verdict domain.HealthVerdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	if err := s.client.Set(ctx, VerdictKey(name), data, DefaultVerdictTTL).Err(); err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}

	if err := s.client.SAdd(ctx, AllAccountsKey(), name).Err(); err != nil {
		return fmt.Errorf("failed to add account to set: %w", err)
	}

	return nil
}

// SaveVerdictsMany stores a whole sweep's verdicts in one round trip.
func (s *Store) SaveVerdictsMany(ctx context.Context, verdicts map[string]domain.HealthVerdict) error {
	pipe := s.client.Pipeline()

	for name, verdict := range verdicts {
		data, err := json.Marshal(verdict)
		if err != nil {
			return fmt.Errorf("failed to marshal verdict for %s: %w", name, err)
		}
		pipe.Set(ctx, VerdictKey(name), data, DefaultVerdictTTL)
		pipe.SAdd(ctx, AllAccountsKey(), name)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save verdicts: %w", err)
	}
	return nil
}

// GetVerdict retrieves an account's latest stored verdict.
func (s *Store) GetVerdict(ctx context.Context, name string) (domain.HealthVerdict, error) {
	data, err := s.client.Get(ctx, VerdictKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.HealthVerdict{}, fmt.Errorf("verdict not found: %s", name)
		}
		return domain.HealthVerdict{}, fmt.Errorf("failed to get verdict: %w", err)
	}

	var verdict domain.HealthVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return domain.HealthVerdict{}, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}
	return verdict, nil
}

// DeleteVerdict removes an account's verdict, used when an account is
// pruned from the registry.
func (s *Store) DeleteVerdict(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, VerdictKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete verdict: %w", err)
	}

	if err := s.client.SRem(ctx, AllAccountsKey(), name).Err(); err != nil {
		return fmt.Errorf("failed to remove account from set: %w", err)
	}

	return nil
}
