package cacheinfra

import (
	"context"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 500

// globMeta lists the characters redis MATCH patterns treat specially.
var globMeta = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// RedisStore keeps encoded values in redis. Expiry maps to the key TTL.
type RedisStore struct {
	client *redis.Client
	codec  Codec
}

// NewRedisStore wraps an existing client. The codec encodes every written value.
func NewRedisStore(client *redis.Client, codec Codec) (*RedisStore, error) {
	if client == nil {
		return nil, &ConfigError{Field: "client", Message: "cannot be nil"}
	}
	if codec == nil {
		return nil, &ConfigError{Field: "codec", Message: "cannot be nil"}
	}
	return &RedisStore{client: client, codec: codec}, nil
}

// Read fetches and decodes key. redis.Nil is a miss.
func (s *RedisStore) Read(ctx context.Context, key string) (any, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeNetwork, "redis get")
	}

	value, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, false, errors.WithContext(
			errors.Wrap(err, errors.CodeSchemaFailed, "decode cache entry"), "key", key)
	}
	return value, true, nil
}

// Write encodes value and stores it with opts.ExpiresIn as TTL (zero keeps it until deleted).
func (s *RedisStore) Write(ctx context.Context, key string, value any, opts WriteOptions) error {
	data, err := s.codec.Marshal(value)
	if err != nil {
		return errors.WithContext(
			errors.Wrap(err, errors.CodeSchemaFailed, "encode cache entry"), "key", key)
	}

	if err := s.client.Set(ctx, key, data, opts.ExpiresIn).Err(); err != nil {
		return errors.Wrap(err, errors.CodeNetwork, "redis set")
	}
	return nil
}

// DeleteMatching scans for keys starting with prefix and deletes them in batches.
func (s *RedisStore) DeleteMatching(ctx context.Context, prefix string) error {
	pattern := globMeta.Replace(prefix) + "*"

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return errors.Wrap(err, errors.CodeNetwork, "redis scan")
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, errors.CodeNetwork, "redis del")
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
