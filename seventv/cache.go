package seventv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// Cache stores fetched emote lists by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]Emote, bool, error)
	Set(ctx context.Context, key string, emotes []Emote) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type MemoryCache struct {
	cache *ttlcache.Cache[string, []Emote]
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []Emote](ttl),
		ttlcache.WithDisableTouchOnHit[string, []Emote](),
	)

	go cache.Start()

	return &MemoryCache{cache: cache}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]Emote, bool, error) {
	item := m.cache.Get(key)
	if item == nil {
		return nil, false, nil
	}

	return item.Value(), true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, emotes []Emote) error {
	m.cache.Set(key, emotes, ttlcache.DefaultTTL)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *MemoryCache) Close() error {
	m.cache.Stop()
	return nil
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password for Redis authentication (optional)
	Password string
	// DB is the Redis database number (default 0)
	DB int
}

const redisKeyPrefix = "stvsync:emotes:"

// RedisCache shares fetched emote lists between multiple stvsync processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and returns an error if the server can't be reached.
func NewRedisCache(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]Emote, bool, error) {
	b, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var emotes []Emote
	if err := json.Unmarshal(b, &emotes); err != nil {
		return nil, false, err
	}

	return emotes, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, emotes []Emote) error {
	b, err := json.Marshal(emotes)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, redisKeyPrefix+key, b, r.ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
