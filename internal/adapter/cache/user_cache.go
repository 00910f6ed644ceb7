package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "placeholder-mirror/internal/domain/user"
)

// keyPrefix namespaces every cached user detail.
const keyPrefix = "user:detail:"

// Invalidation counters. They live outside keyPrefix so DeleteAll never scans them.
const (
	generationKey        = "user:generation"
	userGenerationPrefix = "user:generation:"
)

// scanBatch is the COUNT hint used while scanning keys for DeleteAll.
const scanBatch = 100

// ErrStaleGeneration is returned by Set when the detail was invalidated after
// its generation was read.
var ErrStaleGeneration = errors.New("user detail invalidated while loading")

// Generation is the invalidation state a detail is loaded under. Delete bumps
// User for one id, DeleteAll bumps All.
type Generation struct {
	All  int64
	User int64
}

// setIfCurrent writes KEYS[1] only while both counters still hold the values
// the caller read. Absent counters count as 0.
var setIfCurrent = redis.NewScript(`
local all = redis.call('GET', KEYS[2]) or '0'
local user = redis.call('GET', KEYS[3]) or '0'
if all ~= ARGV[1] or user ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[4]) > 0 then
	redis.call('SET', KEYS[1], ARGV[3], 'PX', ARGV[4])
else
	redis.call('SET', KEYS[1], ARGV[3])
end
return 1
`)

// UserDetailCache defines the interface for caching assembled user details.
type UserDetailCache interface {
	// Get retrieves a user detail from cache by ID.
	// Returns nil if the user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.UserDetail, error)

	// Generation reads the invalidation state for id. Take it before loading
	// the detail that will be passed to Set.
	Generation(ctx context.Context, id int64) (Generation, error)

	// Set stores a user detail with the configured TTL unless an invalidation
	// happened since gen was read, in which case it returns ErrStaleGeneration.
	Set(ctx context.Context, detail *domain.UserDetail, gen Generation) error

	// Delete removes a user detail from cache by ID and fails pending Sets for it.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every cached user detail and fails every pending Set.
	DeleteAll(ctx context.Context) error
}

// RedisUserDetailCache implements UserDetailCache using Redis as the backing store.
type RedisUserDetailCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserDetailCache creates a new Redis-backed user detail cache.
func NewRedisUserDetailCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserDetailCache {
	return &RedisUserDetailCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// cacheKey generates a Redis key for a user ID.
func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

func userGenerationKey(id int64) string {
	return fmt.Sprintf("%s%d", userGenerationPrefix, id)
}

// Generation reads both invalidation counters in one round trip.
func (c *RedisUserDetailCache) Generation(ctx context.Context, id int64) (Generation, error) {
	vals, err := c.client.MGet(ctx, generationKey, userGenerationKey(id)).Result()
	if err != nil {
		c.log.Error("failed to read cache generation", zap.Int64("user_id", id), zap.Error(err))
		return Generation{}, err
	}

	var gen Generation
	if gen.All, err = counterValue(vals[0]); err != nil {
		return Generation{}, err
	}
	if gen.User, err = counterValue(vals[1]); err != nil {
		return Generation{}, err
	}
	return gen, nil
}

func counterValue(v interface{}) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation value %T", v)
	}
	return strconv.ParseInt(s, 10, 64)
}

// Get retrieves a user detail from Redis cache.
func (c *RedisUserDetailCache) Get(ctx context.Context, id int64) (*domain.UserDetail, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == redis.Nil {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var detail domain.UserDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		c.log.Error("failed to unmarshal cached user detail", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &detail, nil
}

// Set stores a user detail in Redis cache with TTL, provided gen is still current.
func (c *RedisUserDetailCache) Set(ctx context.Context, detail *domain.UserDetail, gen Generation) error {
	if detail == nil {
		return fmt.Errorf("cannot cache nil user detail")
	}

	data, err := json.Marshal(detail)
	if err != nil {
		c.log.Error("failed to marshal user detail for cache", zap.Int64("user_id", detail.ID), zap.Error(err))
		return err
	}

	keys := []string{cacheKey(detail.ID), generationKey, userGenerationKey(detail.ID)}
	stored, err := setIfCurrent.Run(ctx, c.client, keys, gen.All, gen.User, data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", detail.ID), zap.Error(err))
		return err
	}
	if stored == 0 {
		c.log.Debug("skipped stale user detail", zap.Int64("user_id", detail.ID))
		return ErrStaleGeneration
	}

	c.log.Debug("cached user detail", zap.Int64("user_id", detail.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete bumps the user's generation and removes its cached detail.
func (c *RedisUserDetailCache) Delete(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, userGenerationKey(id))
		pipe.Del(ctx, cacheKey(id))
		return nil
	})
	if err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}

// DeleteAll bumps the global generation, then scans for every user detail key
// and removes them in batches.
func (c *RedisUserDetailCache) DeleteAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Error("failed to bump cache generation", zap.Error(err))
		return err
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			c.log.Error("failed to scan cache keys", zap.Error(err))
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.log.Error("failed to delete cache keys", zap.Int("count", len(keys)), zap.Error(err))
				return err
			}
			deleted += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	c.log.Debug("flushed user detail cache", zap.Int("count", deleted))
	return nil
}
