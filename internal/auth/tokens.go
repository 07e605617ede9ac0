package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

const tokenKeyPrefix = "auth:token:"

// TokenStore keeps issued bearer tokens in Redis with a TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Save registers the token for the account.
func (s *TokenStore) Save(ctx context.Context, token string, accountID int64) error {
	return s.client.Set(ctx, tokenKeyPrefix+token, accountID, s.ttl).Err()
}

// Resolve returns the account id behind a token, or ErrUnauthorized when the
// token is unknown or expired.
func (s *TokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	raw, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, httpx.ErrUnauthorized
		}
		return 0, fmt.Errorf("auth: resolve token: %w", err)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, httpx.ErrUnauthorized
	}
	return id, nil
}

// Revoke deletes the token. Revoking an unknown token is a no-op.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKeyPrefix+token).Err()
}
