package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// insertScript performs the uniqueness checks, id assignment and writes as one
// atomic unit. Returns -1 for a taken code, -2 for a known long URL, else the new id.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return -1
end
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
	return -2
end
local id = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], 'id', id, 'code', ARGV[2], 'long_url', ARGV[1], 'created_at', ARGV[3])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
return id
`)

// RedisStore is a Redis implementation of shortener.Repository.
type RedisStore struct {
	client *redis.Client
	prefix string // "mapping:" for code -> mapping (hash keys)
	urlKey string // "mapping_urls" for long url -> code (hash map)
	seqKey string // "mapping_seq" id counter
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "mapping:",
		urlKey: "mapping_urls",
		seqKey: "mapping_seq",
	}
}

func (r *RedisStore) FindByLongURL(ctx context.Context, longURL string) (*shortener.Mapping, error) {
	code, err := r.client.HGet(ctx, r.urlKey, longURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, shortener.StorageError("redis find by long url", err)
	}

	return r.FindByCode(ctx, shortener.Code(code))
}

func (r *RedisStore) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return false, shortener.StorageError("redis exists", err)
	}

	return n > 0, nil
}

func (r *RedisStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	createdAt := time.Now()

	keys := []string{r.prefix + string(m.Code), r.urlKey, r.seqKey}

	id, err := insertScript.Run(ctx, r.client, keys,
		m.LongURL,
		string(m.Code),
		createdAt.UnixNano(),
	).Int64()
	if err != nil {
		return shortener.StorageError("redis insert", err)
	}

	switch id {
	case -1:
		return shortener.ErrDuplicateCode
	case -2:
		return shortener.ErrDuplicateURL
	}

	m.ID = id
	m.CreatedAt = createdAt

	return nil
}

func (r *RedisStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, shortener.StorageError("redis find by code", err)
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return mappingFromHash(result), nil
}

// Shutdown closes the Redis client.
func (r *RedisStore) Shutdown() error {
	return r.client.Close()
}

func mappingFromHash(h map[string]string) *shortener.Mapping {
	m := &shortener.Mapping{
		Code:    shortener.Code(h["code"]),
		LongURL: h["long_url"],
	}

	if id, err := strconv.ParseInt(h["id"], 10, 64); err == nil {
		m.ID = id
	}

	if nanos, err := strconv.ParseInt(h["created_at"], 10, 64); err == nil {
		m.CreatedAt = time.Unix(0, nanos)
	}

	return m
}

var _ shortener.Repository = (*RedisStore)(nil)
