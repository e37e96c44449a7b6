package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

const keyPrefix = "onboarding:wizard:session:"

// RedisStore stores sessions as JSON with a TTL that is refreshed on every save.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore builds a store on client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, id string, state *domain.WizardState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+id, data, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (*domain.WizardState, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var state domain.WizardState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if state.Values == nil {
		state.Values = map[string]any{}
	}
	return &state, nil
}
