package consumer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

const (
	defaultClientID       = "d7-messaging-worker"
	defaultSessionTimeout = 30 * time.Second
	defaultHeartbeat      = 3 * time.Second
	retryBackoff          = time.Second
)

// Handler processes one delivered record. Returned errors are logged only.
type Handler func(ctx context.Context, record *Record) error

// Option customises the consumer during construction.
type Option func(*sarama.Config)

// WithConfig replaces the default Sarama config. The value is copied.
func WithConfig(cfg *sarama.Config) Option {
	return func(dst *sarama.Config) {
		if cfg != nil {
			*dst = *cfg
		}
	}
}

// WithInitialOffset selects where a new group starts reading.
func WithInitialOffset(offset int64) Option {
	return func(cfg *sarama.Config) {
		cfg.Consumer.Offsets.Initial = offset
	}
}

// Record is a request record delivered by the consumer group.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string][]byte

	session sarama.ConsumerGroupSession
	message *sarama.ConsumerMessage

	once sync.Once
}

// Consumer reads request records from a consumer group. Offsets are marked
// and committed only when Commit is called for a record.
type Consumer struct {
	logger  zerolog.Logger
	group   sarama.ConsumerGroup
	groupID string

	errorsDone chan struct{}
	wg         sync.WaitGroup
}

// New joins groupID on brokers.
func New(brokers []string, groupID string, logger zerolog.Logger, opts ...Option) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka consumer: at least one broker is required")
	}
	if groupID == "" {
		return nil, errors.New("kafka consumer: group id is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = false

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: create consumer group: %w", err)
	}

	c := &Consumer{
		logger:     logger,
		group:      group,
		groupID:    groupID,
		errorsDone: make(chan struct{}),
	}
	go c.drainErrors()
	return c, nil
}

// Consume blocks, delivering records from topics to handler until ctx is
// cancelled or the group is closed. Session errors are retried after a pause.
func (c *Consumer) Consume(ctx context.Context, topics []string, handler Handler) error {
	if len(topics) == 0 {
		return errors.New("kafka consumer: at least one topic is required")
	}
	if handler == nil {
		return errors.New("kafka consumer: handler is required")
	}

	c.wg.Add(1)
	defer c.wg.Done()

	gh := &groupHandler{logger: c.logger, groupID: c.groupID, handler: handler}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.group.Consume(ctx, topics, gh)
		switch {
		case err == nil:
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		default:
			c.logger.Error().Err(err).Strs("topics", topics).Msg("kafka consumer session failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
}

// Commit marks record as processed and flushes the group offset. Repeated
// calls for the same record are no-ops.
func (c *Consumer) Commit(_ context.Context, record *Record) error {
	if record == nil {
		return errors.New("kafka consumer: record is required")
	}
	if record.session == nil || record.message == nil {
		return errors.New("kafka consumer: record was not delivered by a session")
	}
	record.once.Do(func() {
		record.session.MarkMessage(record.message, "")
		record.session.Commit()
	})
	return nil
}

// Close leaves the group and waits for Consume to return.
func (c *Consumer) Close() error {
	err := c.group.Close()
	c.wg.Wait()
	<-c.errorsDone
	return err
}

func (c *Consumer) drainErrors() {
	defer close(c.errorsDone)
	for err := range c.group.Errors() {
		if err != nil {
			c.logger.Error().Err(err).Msg("kafka consumer error")
		}
	}
}

type groupHandler struct {
	logger  zerolog.Logger
	groupID string
	handler Handler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Info().Str("group_id", h.groupID).Msg("kafka consumer joined group")
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Info().Str("group_id", h.groupID).Msg("kafka consumer left group")
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		record := newRecord(session, msg)
		if err := h.handler(session.Context(), record); err != nil {
			h.logger.Error().
				Err(err).
				Str("topic", msg.Topic).
				Int32("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("kafka consumer handler error")
		}
	}
	return nil
}

func newRecord(session sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) *Record {
	var headers map[string][]byte
	if len(msg.Headers) > 0 {
		headers = make(map[string][]byte, len(msg.Headers))
		for _, h := range msg.Headers {
			if h != nil && len(h.Key) > 0 {
				headers[string(h.Key)] = append([]byte(nil), h.Value...)
			}
		}
	}
	return &Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       append([]byte(nil), msg.Key...),
		Value:     append([]byte(nil), msg.Value...),
		Timestamp: msg.Timestamp,
		Headers:   headers,
		session:   session,
		message:   msg,
	}
}

func defaultConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.ClientID = defaultClientID
	cfg.Consumer.Group.Session.Timeout = defaultSessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = defaultHeartbeat
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true
	return cfg
}
