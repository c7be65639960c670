package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(address string) (Store, error) {
	ret := &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:            address,
			MaxIdleConns:    1,
			ConnMaxIdleTime: 3600 * time.Second,
		}),
	}
	// test the connection
	if err := ret.Ping(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return ret, nil
}

func (self *RedisStore) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return self.client.Ping(ctx).Err()
}

func (self *RedisStore) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return self.client.Set(ctx, key, value, 0).Err()
}

func (self *RedisStore) SetWithTTL(key string, value string, ttl uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return self.client.Set(ctx, key, value, time.Duration(ttl)*time.Second).Err()
}

func (self *RedisStore) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	str, err := self.client.Get(ctx, key).Result()
	if err == redis.Nil {
		err = fmt.Errorf("%w: %s", ErrKeyMissing, key)
	}
	return str, err
}

func (self *RedisStore) GetRecursive(path string) ([]Node, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	var keys []string
	iter := self.client.Scan(ctx, 0, path+"/*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := self.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(keys))
	for i, key := range keys {
		// keys may expire between SCAN and MGET
		if s, ok := values[i].(string); ok {
			nodes = append(nodes, Node{Key: key, Value: s})
		}
	}
	return nodes, nil
}
