package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
	smsadapter "github.com/example/d7-messaging/internal/adapters/sms"
	waadapter "github.com/example/d7-messaging/internal/adapters/whatsapp"
	"github.com/example/d7-messaging/internal/config"
	"github.com/example/d7-messaging/internal/providers/d7"
)

// Transport constructs the configured transport backend: the D7 HTTPS client
// or the offline mock.
func Transport(cfg config.ProviderConfig, logger zerolog.Logger) (common.Transport, error) {
	backend := normalize(cfg.Backend, config.BackendD7)
	switch backend {
	case config.BackendD7:
		client := d7.NewClient(logger,
			d7.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
			d7.WithBodyLimit(int64(cfg.BodyLimitBytes)),
		)
		logger.Info().
			Str("backend", backend).
			Msg("d7 transport initialised")
		return client, nil
	case config.BackendMock:
		transport := d7.NewMockTransport(logger)
		logger.Info().
			Str("backend", backend).
			Msg("d7 transport initialised")
		return transport, nil
	default:
		return nil, fmt.Errorf("factory: unsupported provider backend %q", cfg.Backend)
	}
}

// Dispatchers builds the SMS and WhatsApp adapters on top of transport.
func Dispatchers(cfg config.ProviderConfig, transport common.Transport, logger zerolog.Logger) (*smsadapter.Adapter, *waadapter.Adapter, error) {
	sms, err := smsadapter.NewAdapter(transport,
		logger.With().Str("component", "sms-adapter").Logger(),
		smsadapter.WithEndpoint(cfg.SMSURL))
	if err != nil {
		return nil, nil, fmt.Errorf("factory: sms adapter init: %w", err)
	}
	wa, err := waadapter.NewAdapter(transport,
		logger.With().Str("component", "whatsapp-adapter").Logger(),
		waadapter.WithEndpoint(cfg.WhatsAppURL))
	if err != nil {
		return nil, nil, fmt.Errorf("factory: whatsapp adapter init: %w", err)
	}
	return sms, wa, nil
}

func normalize(value, def string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return def
	}
	return value
}
