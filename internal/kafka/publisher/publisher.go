package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/example/d7-messaging/internal/models"
)

// ErrProducerNotInitialised is returned when the publisher has no producer.
var ErrProducerNotInitialised = errors.New("kafka publisher: producer not initialised")

// SyncProducer is the producer capability the publisher needs.
type SyncProducer interface {
	PublishSync(topic string, key []byte, headers map[string][]byte, payload []byte) error
}

// ResultPublisher writes one result event per processed request record.
type ResultPublisher struct {
	producer SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewResultPublisher returns nil when prod is nil.
func NewResultPublisher(prod SyncProducer, topic string, logger zerolog.Logger) *ResultPublisher {
	if prod == nil {
		return nil
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	return &ResultPublisher{producer: prod, topic: topic, logger: logger}
}

// PublishResult serialises event and publishes it keyed by request id.
func (p *ResultPublisher) PublishResult(_ context.Context, event models.ResultEvent) error {
	if p == nil || p.producer == nil {
		return ErrProducerNotInitialised
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka publisher: marshal result event: %w", err)
	}

	headers := map[string][]byte{
		"content-type": []byte("application/json"),
		"status":       []byte(event.Status),
	}
	if event.Channel != "" {
		headers["channel"] = []byte(event.Channel)
	}

	if err := p.producer.PublishSync(p.topic, []byte(event.RequestID), headers, payload); err != nil {
		return fmt.Errorf("kafka publisher: publish result event: %w", err)
	}
	p.logger.Debug().
		Str("request_id", event.RequestID).
		Str("status", event.Status).
		Msg("result event published")
	return nil
}
