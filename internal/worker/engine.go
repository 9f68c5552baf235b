package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/models"
	"github.com/example/d7-messaging/internal/util"
)

// Config tunes the worker engine.
type Config struct {
	MsgMaxBytes int
	Concurrency int
}

// Record is a request record handed to the engine, decoupled from the
// concrete consumer.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string][]byte

	mu     sync.Mutex
	commit func(context.Context) error
}

func (r *Record) setCommitFn(fn func(context.Context) error) {
	r.mu.Lock()
	r.commit = fn
	r.mu.Unlock()
}

// Commit acknowledges the record to its source. Records without a bound
// commit function are acknowledged trivially.
func (r *Record) Commit(ctx context.Context) error {
	r.mu.Lock()
	fn := r.commit
	r.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Sender sends one compose request and returns its output row.
type Sender interface {
	Send(ctx context.Context, req *models.ComposeRequest) (*models.Row, error)
}

// ResultPublisher emits the result event of a record.
type ResultPublisher interface {
	PublishResult(ctx context.Context, event models.ResultEvent) error
}

// Committer acknowledges a processed record.
type Committer interface {
	Commit(ctx context.Context, record *Record) error
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(ctx context.Context, record *Record) error

// Commit implements Committer.
func (f CommitFunc) Commit(ctx context.Context, record *Record) error { return f(ctx, record) }

// Dependencies collects the engine collaborators.
type Dependencies struct {
	Sender    Sender
	Publisher ResultPublisher
	Committer Committer
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Engine runs every record through the sender independently and publishes
// exactly one result event for it. Nothing is retried. A record is committed
// once it and every earlier record on its partition have a published result.
type Engine struct {
	cfg       Config
	sender    Sender
	publisher ResultPublisher
	committer Committer
	logger    zerolog.Logger
	now       func() time.Time

	sem     *semaphore.Weighted
	offsets *offsetTracker
}

// NewEngine validates cfg and deps and returns a ready engine.
func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if cfg.Concurrency < 1 {
		return nil, errors.New("worker: concurrency must be >= 1")
	}
	if cfg.MsgMaxBytes < 0 {
		return nil, errors.New("worker: msg max bytes cannot be negative")
	}
	if deps.Sender == nil {
		return nil, errors.New("worker: sender dependency is required")
	}
	if deps.Publisher == nil {
		return nil, errors.New("worker: result publisher dependency is required")
	}
	if deps.Committer == nil {
		return nil, errors.New("worker: committer dependency is required")
	}

	logger := deps.Logger
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		cfg:       cfg,
		sender:    deps.Sender,
		publisher: deps.Publisher,
		committer: deps.Committer,
		logger:    logger,
		now:       now,
		sem:       semaphore.NewWeighted(int64(cfg.Concurrency)),
		offsets:   newOffsetTracker(),
	}, nil
}

// HandleRecord decodes record and schedules it for sending. Records that
// cannot be decoded get a failed result immediately. It blocks while the
// engine is at its concurrency limit.
func (e *Engine) HandleRecord(ctx context.Context, record *Record) {
	if record == nil {
		return
	}
	pending := e.offsets.track(record)

	req, err := e.decode(record)
	if err != nil {
		requestID := requestIDFor(record, nil)
		e.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("topic", record.Topic).
			Int64("offset", record.Offset).
			Msg("worker: request record rejected")
		e.finish(ctx, pending, models.ResultEvent{
			RequestID: requestID,
			Status:    models.ResultStatusFailed,
			ErrorKind: models.ErrorKindDecode,
			Error:     err.Error(),
		})
		return
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		e.logger.Warn().
			Err(err).
			Str("request_id", req.RequestID).
			Msg("worker: stopped before the record could be scheduled")
		return
	}
	go func() {
		defer e.sem.Release(1)
		e.process(ctx, pending, req)
	}()
}

// Wait blocks until every scheduled record has finished or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	n := int64(e.cfg.Concurrency)
	if err := e.sem.Acquire(ctx, n); err != nil {
		return err
	}
	e.sem.Release(n)
	return nil
}

func (e *Engine) decode(record *Record) (*models.ComposeRequest, error) {
	if err := util.EnsureMaxBytes("record value", record.Value, e.cfg.MsgMaxBytes); err != nil {
		return nil, err
	}
	var req models.ComposeRequest
	dec := json.NewDecoder(bytes.NewReader(record.Value))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	req.RequestID = requestIDFor(record, &req)
	return &req, nil
}

func (e *Engine) process(ctx context.Context, pending *pendingRecord, req *models.ComposeRequest) {
	start := e.now()
	row, err := e.sender.Send(ctx, req)
	duration := e.now().Sub(start)

	log := e.logger.With().
		Str("request_id", req.RequestID).
		Str("channel", req.Channel).
		Dur("duration", duration).
		Logger()

	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		log.Warn().Err(err).Msg("worker: cancelled during send; record left uncommitted")
		return
	}

	event := models.ResultEvent{
		RequestID: req.RequestID,
		Channel:   req.Channel,
	}
	if err != nil {
		log.Warn().Err(err).Msg("worker: send failed")
		event.Status = models.ResultStatusFailed
		event.ErrorKind = common.Classify(err)
		event.Error = err.Error()
		event.Field = common.FieldOf(err)
		var te *common.TransportError
		if errors.As(err, &te) {
			event.HTTPStatus = te.StatusCode
			event.Temporary = te.Temporary()
		}
	} else {
		log.Info().Msg("worker: message sent")
		event.Status = models.ResultStatusSent
		event.Row = row
	}
	e.finish(ctx, pending, event)
}

func (e *Engine) finish(ctx context.Context, pending *pendingRecord, event models.ResultEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now().UTC()
	}
	if err := e.publisher.PublishResult(ctx, event); err != nil {
		e.logger.Error().
			Err(err).
			Str("request_id", event.RequestID).
			Msg("worker: failed to publish result event; record left uncommitted")
		return
	}
	record := e.offsets.complete(pending)
	if record == nil {
		e.logger.Debug().
			Str("request_id", event.RequestID).
			Int64("offset", pending.record.Offset).
			Msg("worker: commit deferred until earlier records finish")
		return
	}
	if err := e.committer.Commit(ctx, record); err != nil {
		e.logger.Error().
			Err(err).
			Str("topic", record.Topic).
			Int32("partition", record.Partition).
			Int64("offset", record.Offset).
			Msg("worker: failed to commit record offset")
	}
}

// requestIDFor prefers the request's own id, then the record key.
func requestIDFor(record *Record, req *models.ComposeRequest) string {
	if req != nil && req.RequestID != "" {
		return req.RequestID
	}
	if len(record.Key) > 0 {
		return string(record.Key)
	}
	return util.NewRequestID()
}
