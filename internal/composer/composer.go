package composer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/models"
	"github.com/example/d7-messaging/internal/util"
)

// APIKeyResolver supplies the API key used to authorise a send.
type APIKeyResolver interface {
	ResolveAPIKey(ctx context.Context, req *models.ComposeRequest) (string, error)
}

// Option customises the Composer.
type Option func(*Composer)

// WithClock overrides the clock used to time dispatches.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// Composer selects, builds and dispatches one message per call. It holds no
// per-call state and is safe for concurrent use.
type Composer struct {
	logger      zerolog.Logger
	dispatchers map[models.Channel]common.Dispatcher
	keys        APIKeyResolver
	now         func() time.Time
}

// New constructs a Composer from the per-channel dispatchers and key resolver.
func New(sms, whatsapp common.Dispatcher, keys APIKeyResolver, logger zerolog.Logger, opts ...Option) (*Composer, error) {
	if sms == nil {
		return nil, errors.New("composer: sms dispatcher is required")
	}
	if whatsapp == nil {
		return nil, errors.New("composer: whatsapp dispatcher is required")
	}
	if keys == nil {
		return nil, errors.New("composer: api key resolver is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	c := &Composer{
		logger: logger,
		dispatchers: map[models.Channel]common.Dispatcher{
			models.ChannelSMS:      sms,
			models.ChannelWhatsApp: whatsapp,
		},
		keys: keys,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Send builds the payload for req, resolves the API key and dispatches it.
// Errors are returned unchanged; nothing is retried.
func (c *Composer) Send(ctx context.Context, req *models.ComposeRequest) (*models.Row, error) {
	if req == nil {
		return nil, errNilRequest
	}

	channel, kind, err := Resolve(req)
	if err != nil {
		return nil, err
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = util.NewRequestID()
	}
	log := c.logger.With().
		Str("request_id", requestID).
		Str("channel", string(channel)).
		Str("shape", kind.String()).
		Logger()

	payload, err := buildShape(channel, kind, req)
	if err != nil {
		log.Debug().Err(err).Msg("composer: payload rejected")
		return nil, err
	}

	apiKey, err := c.keys.ResolveAPIKey(ctx, req)
	if err != nil {
		log.Debug().Err(err).Msg("composer: api key resolution failed")
		return nil, err
	}

	dispatcher, ok := c.dispatchers[channel]
	if !ok {
		return nil, fmt.Errorf("composer: no dispatcher for channel %s", channel)
	}

	start := c.now()
	resp, err := dispatcher.Dispatch(ctx, payload, apiKey)
	duration := c.now().Sub(start)
	if err != nil {
		log.Warn().Err(err).Dur("duration", duration).Msg("composer: dispatch failed")
		return nil, err
	}

	log.Debug().Dur("duration", duration).Msg("composer: dispatch succeeded")
	return &models.Row{JSON: resp}, nil
}
