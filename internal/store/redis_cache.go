package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Mappings are immutable, so cached entries never go stale; the TTL only bounds
// cache memory.
type RedisCacheRepository struct {
	store     shortener.Repository
	client    *redis.Client
	prefix    string
	urlPrefix string
	ttl       time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:     store,
		client:    client,
		prefix:    "cache:mapping:",
		urlPrefix: "cache:url:",
		ttl:       ttl,
	}
}

// FindByLongURL checks the long URL index in cache before hitting the store.
func (r *RedisCacheRepository) FindByLongURL(ctx context.Context, longURL string) (*shortener.Mapping, error) {
	code, err := r.client.Get(ctx, r.urlKey(longURL)).Result()
	if err == nil {
		if m, err := r.getFromCache(ctx, shortener.Code(code)); err == nil && m.LongURL == longURL {
			return m, nil
		}
	}

	m, err := r.store.FindByLongURL(ctx, longURL)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m)

	return m, nil
}

// Exists answers from cache when the code is cached; absence is always confirmed by the store.
func (r *RedisCacheRepository) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	if n, err := r.client.Exists(ctx, r.prefix+string(code)).Result(); err == nil && n > 0 {
		return true, nil
	}

	return r.store.Exists(ctx, code)
}

// Insert stores a mapping in the underlying store and updates the cache.
func (r *RedisCacheRepository) Insert(ctx context.Context, m *shortener.Mapping) error {
	if err := r.store.Insert(ctx, m); err != nil {
		return err
	}

	r.cacheMapping(ctx, m)

	return nil
}

// FindByCode retrieves a mapping by its code, checking cache first.
func (r *RedisCacheRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	if m, err := r.getFromCache(ctx, code); err == nil {
		return m, nil
	}

	m, err := r.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m)

	return m, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return mappingFromHash(result), nil
}

// cacheMapping is best effort; a failed cache write only costs a later store read.
func (r *RedisCacheRepository) cacheMapping(ctx context.Context, m *shortener.Mapping) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(m.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"id":         strconv.FormatInt(m.ID, 10),
		"code":       string(m.Code),
		"long_url":   m.LongURL,
		"created_at": m.CreatedAt.UnixNano(),
	})
	pipe.Set(ctx, r.urlKey(m.LongURL), string(m.Code), r.ttl)

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) urlKey(longURL string) string {
	return r.urlPrefix + string(shortener.HashURL(longURL))
}

// Shutdown closes the Redis client.
func (r *RedisCacheRepository) Shutdown() error {
	return r.client.Close()
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
