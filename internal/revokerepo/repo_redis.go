// Package revokerepo stores the IDs of access tokens revoked by logout.
package revokerepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/pkg/errorspkg"
)

const keyPrefix = "revoked_token:"

// Client is the subset of the redis client used by RepoRedis.
//
//go:generate mockgen -source repo_redis.go -destination repo_redis_mock.go -package revokerepo
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RepoRedis keeps revoked token IDs in redis until the tokens expire.
type RepoRedis struct {
	client Client
}

// NewRepoRedis returns revoke RepoRedis.
func NewRepoRedis(c Client) *RepoRedis {
	return &RepoRedis{client: c}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Revoke marks the token as revoked until the given time.
//
// Already expired tokens are not stored.
func (r *RepoRedis) Revoke(ctx context.Context, id uuid.UUID, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, key(id), 1, ttl).Err(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("token_id", id.String()).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// IsRevoked reports whether the token was revoked.
func (r *RepoRedis) IsRevoked(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, key(id)).Result()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("token_id", id.String()).Send()
		return false, errorspkg.ErrInternal
	}

	return n > 0, nil
}
