package d7_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/providers/d7"
)

func TestMockTransportSuccess(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock := d7.NewMockTransport(zerolog.Nop(), d7.WithClock(func() time.Time { return fixed }))

	resp, err := mock.PostJSON(context.Background(), "http://x/send", map[string]string{"Authorization": "Bearer k"}, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]string
	if err := json.Unmarshal(resp, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "accepted" || body["created_at"] != "2024-05-01T12:00:00Z" || body["request_id"] == "" {
		t.Fatalf("unexpected response %+v", body)
	}

	calls := mock.Calls()
	if len(calls) != 1 || calls[0].URL != "http://x/send" || string(calls[0].Body) != `{"a":1}` {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if calls[0].Headers["Authorization"] != "Bearer k" {
		t.Fatalf("expected headers to be recorded")
	}
}

func TestMockTransportFailureScenarios(t *testing.T) {
	cases := []struct {
		scenario  d7.Scenario
		status    int
		temporary bool
	}{
		{d7.ScenarioRejected, 401, false},
		{d7.ScenarioTransient, 429, true},
	}
	for _, tc := range cases {
		mock := d7.NewMockTransport(zerolog.Nop(), d7.WithScenario(tc.scenario))
		_, err := mock.PostJSON(context.Background(), "http://x", nil, []byte(`{}`))
		var te *common.TransportError
		if !errors.As(err, &te) {
			t.Fatalf("%s: expected transport error, got %v", tc.scenario, err)
		}
		if te.StatusCode != tc.status || te.Temporary() != tc.temporary {
			t.Fatalf("%s: unexpected error %+v", tc.scenario, te)
		}
	}
}

func TestMockTransportLatencyHonoursContext(t *testing.T) {
	mock := d7.NewMockTransport(zerolog.Nop(), d7.WithLatency(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.PostJSON(ctx, "http://x", nil, []byte(`{}`))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestMockTransportRequiresBody(t *testing.T) {
	mock := d7.NewMockTransport(zerolog.Nop())
	if _, err := mock.PostJSON(context.Background(), "http://x", nil, nil); err == nil {
		t.Fatalf("expected error for empty body")
	}
	if len(mock.Calls()) != 0 {
		t.Fatalf("expected nothing recorded")
	}
}

func TestMockTransportKeepsRecentCalls(t *testing.T) {
	mock := d7.NewMockTransport(zerolog.Nop(), d7.WithCallHistory(2))
	for _, body := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}`} {
		if _, err := mock.PostJSON(context.Background(), "http://x", nil, []byte(body)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	calls := mock.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls kept, got %d", len(calls))
	}
	if string(calls[0].Body) != `{"n":2}` || string(calls[1].Body) != `{"n":3}` {
		t.Fatalf("expected the most recent calls, got %s and %s", calls[0].Body, calls[1].Body)
	}
}

func TestMockTransportDefaultHistoryIsBounded(t *testing.T) {
	mock := d7.NewMockTransport(zerolog.Nop())
	for i := 0; i < d7.DefaultCallHistory+5; i++ {
		if _, err := mock.PostJSON(context.Background(), "http://x", nil, []byte(`{}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := len(mock.Calls()); got != d7.DefaultCallHistory {
		t.Fatalf("expected %d calls kept, got %d", d7.DefaultCallHistory, got)
	}
}

func TestMockTransportRecordingDisabled(t *testing.T) {
	mock := d7.NewMockTransport(zerolog.Nop(), d7.WithCallHistory(0))
	if _, err := mock.PostJSON(context.Background(), "http://x", nil, []byte(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.Calls()) != 0 {
		t.Fatalf("expected no calls recorded")
	}
}
