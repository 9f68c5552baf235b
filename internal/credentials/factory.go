package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/example/d7-messaging/internal/config"
	"github.com/example/d7-messaging/internal/models"
)

// Resolver is the API key capability handed to the composer.
type Resolver interface {
	ResolveAPIKey(ctx context.Context, req *models.ComposeRequest) (string, error)
}

// FromConfig builds the resolver selected by cfg.Source. The returned close
// function releases any store connection and is never nil.
func FromConfig(cfg config.CredentialConfig, logger zerolog.Logger) (Resolver, func() error, error) {
	noop := func() error { return nil }
	source := strings.ToLower(strings.TrimSpace(cfg.Source))

	var store Store
	closeFn := noop
	switch source {
	case "", config.SourceLiteral:
		logger.Info().Str("source", config.SourceLiteral).Msg("credential resolver initialised")
		return Literal{}, noop, nil
	case config.SourceEnv:
		store = NewEnvStore()
	case config.SourceDotenv:
		s, err := NewDotenvStore(cfg.File)
		if err != nil {
			return nil, noop, err
		}
		store = s
	case config.SourceRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s, err := NewRedisStore(client, cfg.Redis.KeyPrefix)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		store = s
		closeFn = client.Close
	default:
		return nil, noop, fmt.Errorf("credentials: unsupported source %q", cfg.Source)
	}

	resolver, err := NewStoreResolver(store, cfg.Name, logger, cfg.AllowedNames...)
	if err != nil {
		_ = closeFn()
		return nil, noop, err
	}
	logger.Info().Str("source", source).Str("credential", resolver.defaultName).Msg("credential resolver initialised")
	return resolver, closeFn, nil
}
