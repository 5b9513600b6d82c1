package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

const defaultKeyPrefix = "weather_sdk:instance"

// RedisRegistry shares API key reservations between processes through Redis.
// Each registry carries an owner token; it only ever deletes keys it wrote.
type RedisRegistry struct {
	client redis.Cmdable
	prefix string
	owner  string
	logger *logrus.Logger
}

func NewRedisRegistry(client redis.Cmdable, prefix string, logger *logrus.Logger) *RedisRegistry {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisRegistry{client: client, prefix: prefix, owner: uuid.NewString(), logger: logger}
}

// key hashes the API key so it is never stored in Redis in clear text.
func (r *RedisRegistry) key(id string) string {
	sum := sha256.Sum256([]byte(id))
	return r.prefix + ":" + hex.EncodeToString(sum[:])
}

// Owner returns the token written into every reservation made by this registry.
func (r *RedisRegistry) Owner() string {
	return r.owner
}

// Reserve implements ports.InstanceRegistry.Reserve using SETNX.
func (r *RedisRegistry) Reserve(ctx context.Context, id string) error {
	ok, err := r.client.SetNX(ctx, r.key(id), r.owner, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve instance key: %w", err)
	}
	if !ok {
		return weather.ErrDuplicateInstance
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"owner": r.owner}).Debug("instance key reserved in redis")
	}
	return nil
}

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Release implements ports.InstanceRegistry.Release. Keys held by another
// owner, or already gone, are left untouched.
func (r *RedisRegistry) Release(ctx context.Context, id string) error {
	n, err := releaseScript.Run(ctx, r.client, []string{r.key(id)}, r.owner).Int64()
	if err != nil {
		return fmt.Errorf("failed to release instance key: %w", err)
	}
	if n == 0 && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"owner": r.owner}).Debug("instance key not held by this owner; nothing released")
	}
	return nil
}

var _ ports.InstanceRegistry = (*RedisRegistry)(nil)
