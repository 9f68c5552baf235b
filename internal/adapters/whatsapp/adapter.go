package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/models"
)

// DefaultEndpoint is the D7 WhatsApp send endpoint.
const DefaultEndpoint = "https://api.d7networks.com/whatsapp/v2/send"

// Option customises adapter behaviour.
type Option func(*Adapter)

// WithEndpoint overrides the send endpoint.
func WithEndpoint(endpoint string) Option {
	return func(a *Adapter) {
		if strings.TrimSpace(endpoint) != "" {
			a.endpoint = strings.TrimSpace(endpoint)
		}
	}
}

// WithRawBodyLimit overrides the maximum number of characters retained from the provider body.
func WithRawBodyLimit(limit int) Option {
	return func(a *Adapter) {
		if limit > 0 {
			a.maxRawChars = limit
		}
	}
}

// Adapter dispatches WhatsApp payloads.
type Adapter struct {
	logger      zerolog.Logger
	transport   common.Transport
	endpoint    string
	maxRawChars int
}

// NewAdapter constructs a WhatsApp adapter.
func NewAdapter(transport common.Transport, logger zerolog.Logger, opts ...Option) (*Adapter, error) {
	if transport == nil {
		return nil, errors.New("whatsapp adapter: transport dependency is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	a := &Adapter{
		logger:      logger,
		transport:   transport,
		endpoint:    DefaultEndpoint,
		maxRawChars: common.DefaultRawBodyLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Endpoint returns the URL payloads are posted to.
func (a *Adapter) Endpoint() string { return a.endpoint }

// Dispatch serialises the WhatsApp body and posts it with bearer auth.
func (a *Adapter) Dispatch(ctx context.Context, payload *models.OutboundPayload, apiKey string) (json.RawMessage, error) {
	if payload == nil || payload.WhatsApp == nil {
		return nil, errors.New("whatsapp adapter: payload has no whatsapp body")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, common.NewMissingField("apiKey")
	}

	body, err := models.EncodeWire(payload.WhatsApp)
	if err != nil {
		return nil, fmt.Errorf("whatsapp adapter: marshal payload: %w", err)
	}

	var contentType string
	recipients := 0
	for _, m := range payload.WhatsApp.Messages {
		recipients += len(m.Recipients)
		contentType = m.Content.MessageType
	}

	resp, err := a.transport.PostJSON(ctx, a.endpoint, common.Headers(apiKey), body)
	if err != nil {
		err = common.AsTransportError(err)
		evt := a.logger.Warn().
			Str("channel", string(models.ChannelWhatsApp)).
			Str("content_type", contentType).
			Str("endpoint", a.endpoint).
			Int("recipients", recipients)
		var te *common.TransportError
		if errors.As(err, &te) {
			evt = evt.Int("http_status", te.StatusCode).
				Bool("temporary", te.Temporary()).
				Str("raw", common.TruncateRaw(te.Body, a.maxRawChars))
		}
		evt.Err(err).Msg("whatsapp adapter send failed")
		return nil, err
	}

	a.logger.Debug().
		Str("channel", string(models.ChannelWhatsApp)).
		Str("content_type", contentType).
		Str("endpoint", a.endpoint).
		Int("recipients", recipients).
		Msg("whatsapp adapter send succeeded")
	return resp, nil
}
