package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/example/d7-messaging/internal/composer"
	"github.com/example/d7-messaging/internal/config"
	"github.com/example/d7-messaging/internal/credentials"
	"github.com/example/d7-messaging/internal/logger"
	"github.com/example/d7-messaging/internal/providers/factory"
)

// runtime is the composer plus everything that has to be released with it.
type runtime struct {
	log      zerolog.Logger
	composer *composer.Composer
	close    func() error
}

func newLogger(cfg *config.Config, service string) (zerolog.Logger, error) {
	base, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logger init: %w", err)
	}
	return logger.Component(*base, service, ""), nil
}

func buildRuntime(cfg *config.Config, log zerolog.Logger) (*runtime, error) {
	transport, err := factory.Transport(cfg.Provider, logger.Component(log, "", "d7-transport"))
	if err != nil {
		return nil, err
	}
	sms, wa, err := factory.Dispatchers(cfg.Provider, transport, log)
	if err != nil {
		return nil, err
	}
	keys, closeKeys, err := credentials.FromConfig(cfg.Credentials, logger.Component(log, "", "credentials"))
	if err != nil {
		return nil, fmt.Errorf("credentials init: %w", err)
	}
	c, err := composer.New(sms, wa, keys, logger.Component(log, "", "composer"))
	if err != nil {
		_ = closeKeys()
		return nil, err
	}
	return &runtime{log: log, composer: c, close: closeKeys}, nil
}

func (r *runtime) shutdown() {
	if err := r.close(); err != nil {
		r.log.Error().Err(err).Msg("failed to release credential store")
	}
}

func fail(stage string, err error) error {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	l.Error().Err(err).Str("stage", stage).Msg("d7msg init failed")
	return err
}
