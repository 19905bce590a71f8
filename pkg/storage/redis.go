package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ssargent/raffle/pkg/store"
)

// RedisConfig holds connection settings for the redis engine
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string        // name of the hash holding all records
	Timeout  time.Duration // per-command timeout
}

// RedisEngine keeps every record as a field of one redis hash
type RedisEngine struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

var _ store.Engine = (*RedisEngine)(nil)

// NewRedisEngine connects to redis and checks the connection with PING
func NewRedisEngine(config RedisConfig) (*RedisEngine, error) {
	if config.Key == "" {
		config.Key = "raffle"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	e := &RedisEngine{client: client, key: config.Key, timeout: config.Timeout}

	ctx, cancel := e.context()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}

	return e, nil
}

func (e *RedisEngine) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.timeout)
}

func (e *RedisEngine) Put(key, value []byte) error {
	if len(key) == 0 {
		return store.ErrInvalidKey
	}
	if len(value) == 0 {
		return store.ErrInvalidValue
	}

	ctx, cancel := e.context()
	defer cancel()
	return e.client.HSet(ctx, e.key, string(key), value).Err()
}

func (e *RedisEngine) Get(key []byte) ([]byte, error) {
	ctx, cancel := e.context()
	defer cancel()

	value, err := e.client.HGet(ctx, e.key, string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (e *RedisEngine) Delete(key []byte) error {
	if len(key) == 0 {
		return store.ErrInvalidKey
	}

	ctx, cancel := e.context()
	defer cancel()
	return e.client.HDel(ctx, e.key, string(key)).Err()
}

// Scan reads the whole hash and visits it in key order
func (e *RedisEngine) Scan(fn func(key, value []byte) error) error {
	ctx, cancel := e.context()
	defer cancel()

	all, err := e.client.HGetAll(ctx, e.key).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn([]byte(k), []byte(all[k])); err != nil {
			return err
		}
	}
	return nil
}

func (e *RedisEngine) Len() (int, error) {
	ctx, cancel := e.context()
	defer cancel()

	n, err := e.client.HLen(ctx, e.key).Result()
	return int(n), err
}

// Sync is a no-op; durability is governed by the redis server's persistence
func (e *RedisEngine) Sync() error {
	return nil
}

func (e *RedisEngine) Close() error {
	return e.client.Close()
}
