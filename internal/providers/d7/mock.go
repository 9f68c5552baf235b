package d7

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
)

// Scenario enumerates the mock behaviours supported by MockTransport.
type Scenario string

const (
	ScenarioSuccess   Scenario = "success"
	ScenarioRejected  Scenario = "rejected"
	ScenarioTransient Scenario = "transient"
	ScenarioTimeout   Scenario = "timeout"
)

// DefaultCallHistory is how many recent calls MockTransport keeps.
const DefaultCallHistory = 100

var errNoBody = errors.New("d7 mock: body is required")

// Call records one request seen by MockTransport.
type Call struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// MockOption customises the mock transport.
type MockOption func(*MockTransport)

// WithScenario sets the behaviour of every call.
func WithScenario(s Scenario) MockOption {
	return func(m *MockTransport) {
		m.scenario = s
	}
}

// WithLatency configures the artificial latency injected before answering.
func WithLatency(d time.Duration) MockOption {
	return func(m *MockTransport) {
		if d < 0 {
			d = 0
		}
		m.latency = d
	}
}

// WithClock overrides the clock used to timestamp responses.
func WithClock(now func() time.Time) MockOption {
	return func(m *MockTransport) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCallHistory sets how many recent calls are kept. Zero disables
// recording.
func WithCallHistory(n int) MockOption {
	return func(m *MockTransport) {
		if n < 0 {
			n = 0
		}
		m.history = n
	}
}

// MockTransport answers like D7 without network access. It is used by the
// mock provider backend and in tests.
type MockTransport struct {
	logger   zerolog.Logger
	scenario Scenario
	latency  time.Duration
	now      func() time.Time
	history  int

	mu    sync.Mutex
	calls []Call
}

// NewMockTransport constructs a mock transport.
func NewMockTransport(logger zerolog.Logger, opts ...MockOption) *MockTransport {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	m := &MockTransport{
		logger:   logger,
		scenario: ScenarioSuccess,
		now:      time.Now,
		history:  DefaultCallHistory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Calls returns a copy of the recorded calls, oldest first.
func (m *MockTransport) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// PostJSON records the call and answers according to the scenario.
func (m *MockTransport) PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (json.RawMessage, error) {
	if len(body) == 0 {
		return nil, errNoBody
	}

	m.record(url, headers, body)

	select {
	case <-ctx.Done():
		return nil, &common.TransportError{Err: ctx.Err()}
	default:
	}

	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &common.TransportError{Err: ctx.Err()}
		case <-timer.C:
		}
	}

	switch m.scenario {
	case ScenarioSuccess, "":
		resp := map[string]string{
			"request_id": uuid.NewString(),
			"status":     "accepted",
			"created_at": m.now().UTC().Format(time.RFC3339),
		}
		out, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("d7 mock: marshal response: %w", err)
		}
		m.logger.Debug().Str("url", url).Msg("d7 mock accepted request")
		return out, nil
	case ScenarioRejected:
		return nil, &common.TransportError{
			StatusCode: 401,
			Body:       `{"detail":{"code":"ACCESS_TOKEN_SIGNATURE_VERIFICATION_FAILED","message":"It looks like your requested access token is incorrect"}}`,
			Err:        errors.New("d7 mock: http 401: ACCESS_TOKEN_SIGNATURE_VERIFICATION_FAILED"),
		}
	case ScenarioTransient:
		return nil, &common.TransportError{
			StatusCode: 429,
			Body:       `{"detail":"rate limited"}`,
			Err:        errors.New("d7 mock: http 429: rate limited"),
		}
	case ScenarioTimeout:
		<-ctx.Done()
		return nil, &common.TransportError{Err: ctx.Err()}
	default:
		return nil, fmt.Errorf("d7 mock: unknown scenario %q", m.scenario)
	}
}

func (m *MockTransport) record(url string, headers map[string]string, body []byte) {
	if m.history == 0 {
		return
	}
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	b := make([]byte, len(body))
	copy(b, body)

	call := Call{URL: url, Headers: h, Body: b}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) < m.history {
		m.calls = append(m.calls, call)
		return
	}
	copy(m.calls, m.calls[1:])
	m.calls[len(m.calls)-1] = call
}

var _ common.Transport = (*MockTransport)(nil)
