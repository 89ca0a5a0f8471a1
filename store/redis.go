package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/vitrine/core"
)

// RedisOptions 是 RedisStore 的连接参数。
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix 会加在所有 key 前面，用于多环境共享实例
	KeyPrefix string
}

// RedisStore 是 Redis 实现的 KeyValueStore。
// 交互流水使用有序集合，喜欢列表使用 Hash。
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable("redis: ping", err)
	}
	return &RedisStore{client: client, prefix: opts.KeyPrefix}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) key(k string) string { return r.prefix + k }

func (r *RedisStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return unavailable("redis: zadd", r.client.ZAdd(ctx, r.key(key), redis.Z{Score: score, Member: member}).Err())
}

func (r *RedisStore) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	res, err := r.client.ZRangeByScore(ctx, r.key(key), &redis.ZRangeBy{
		Min: strconv.FormatFloat(min, 'f', -1, 64),
		Max: strconv.FormatFloat(max, 'f', -1, 64),
	}).Result()
	return res, unavailable("redis: zrangebyscore", err)
}

func (r *RedisStore) HGet(ctx context.Context, key, field string) ([]byte, error) {
	val, err := r.client.HGet(ctx, r.key(key), field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	return val, unavailable("redis: hget", err)
}

func (r *RedisStore) HSet(ctx context.Context, key, field string, value []byte) error {
	return unavailable("redis: hset", r.client.HSet(ctx, r.key(key), field, value).Err())
}

func (r *RedisStore) HDel(ctx context.Context, key, field string) (bool, error) {
	n, err := r.client.HDel(ctx, r.key(key), field).Result()
	if err != nil {
		return false, unavailable("redis: hdel", err)
	}
	return n > 0, nil
}

func (r *RedisStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	vals, err := r.client.HGetAll(ctx, r.key(key)).Result()
	if err != nil {
		return nil, unavailable("redis: hgetall", err)
	}
	result := make(map[string][]byte, len(vals))
	for k, v := range vals {
		result[k] = []byte(v)
	}
	return result, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// 确保 RedisStore 实现了 core.Store 和 core.KeyValueStore 接口
var _ core.Store = (*RedisStore)(nil)
var _ core.KeyValueStore = (*RedisStore)(nil)
