package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// EnvStore reads credentials from process environment variables named by EnvKey.
type EnvStore struct {
	lookup func(string) (string, bool)
}

// NewEnvStore returns a store over os.LookupEnv.
func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// NewEnvStoreFromLookup returns a store over lookup.
func NewEnvStoreFromLookup(lookup func(string) (string, bool)) *EnvStore {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &EnvStore{lookup: lookup}
}

// Lookup implements Store.
func (s *EnvStore) Lookup(_ context.Context, name string) (Credential, error) {
	val, ok := s.lookup(EnvKey(name))
	if !ok || strings.TrimSpace(val) == "" {
		return Credential{}, ErrNotFound
	}
	return Credential{APIKey: val}, nil
}

// DotenvStore reads credentials from a KEY=value file. The file is re-read on
// every lookup so rotated keys are picked up without a restart.
type DotenvStore struct {
	path string
}

// NewDotenvStore returns a store over the file at path.
func NewDotenvStore(path string) (*DotenvStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credentials: dotenv file path is required")
	}
	return &DotenvStore{path: path}, nil
}

// Lookup implements Store.
func (s *DotenvStore) Lookup(_ context.Context, name string) (Credential, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		return Credential{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	val, ok := values[EnvKey(name)]
	if !ok || strings.TrimSpace(val) == "" {
		return Credential{}, ErrNotFound
	}
	return Credential{APIKey: val}, nil
}

// HashGetter is the subset of the redis client used by RedisStore.
type HashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

// RedisStore reads credentials from redis hashes keyed "<prefix><name>", with
// the key held in the "apiKey" field.
type RedisStore struct {
	client HashGetter
	prefix string
}

// NewRedisStore returns a store over client.
func NewRedisStore(client HashGetter, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("credentials: redis client is required")
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Lookup implements Store.
func (s *RedisStore) Lookup(ctx context.Context, name string) (Credential, error) {
	val, err := s.client.HGet(ctx, s.prefix+name, fieldAPIKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, fmt.Errorf("redis hget: %w", err)
	}
	return Credential{APIKey: val}, nil
}
