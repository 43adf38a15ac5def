package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepo stores the snapshot as one JSON value under a single key.
type RedisRepo struct {
	client *redis.Client
	key    string
}

var _ Repo = (*RedisRepo)(nil)

func NewRedisRepo(client *redis.Client, key string) (*RedisRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("[NewRedisRepo] client is required")
	}
	if key == "" {
		return nil, fmt.Errorf("[NewRedisRepo] key is required")
	}
	return &RedisRepo{client: client, key: key}, nil
}

// OpenRedis connects to addr and verifies the connection before returning.
func OpenRedis(ctx context.Context, addr, password string, db int, key string) (*RedisRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return NewRedisRepo(client, key)
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}

func (r *RedisRepo) Load(ctx context.Context) (Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get %s: %w", r.key, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return snap, nil
}

func (r *RedisRepo) Save(ctx context.Context, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}
