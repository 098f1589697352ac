package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/storage"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const (
	keyPrefix         = "kmu:answer:"
	departmentPrefix  = "kmu:answers:department:"
	connectionTimeout = 5 * time.Second
)

var ErrEmptyAddress = errors.New("redis address is required")

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// RedisStore keeps cached answers as JSON documents under keyPrefix+hash.
// Each department has a set of its answer keys for invalidation.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the server before returning.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) GetCachedAnswer(ctx context.Context, key string) (*models.CachedAnswer, error) {
	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("cached answer %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var answer models.CachedAnswer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return nil, fmt.Errorf("decode cached answer %s: %w", key, err)
	}
	return &answer, nil
}

// UpsertCachedAnswer overwrites the document without expiry and records the
// key in its department set, in one transaction.
func (r *RedisStore) UpsertCachedAnswer(ctx context.Context, answer *models.CachedAnswer) error {
	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("encode cached answer: %w", err)
	}
	key := keyPrefix + answer.QuestionHash
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, raw, 0)
		pipe.SAdd(ctx, departmentPrefix+answer.Department.String(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteCachedAnswersByDepartment(ctx context.Context, department types.Department) (int64, error) {
	setKey := departmentPrefix + department.String()
	keys, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var deleted *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.SRem(ctx, setKey, toAny(keys)...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return deleted.Val(), nil
}

func toAny(keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
