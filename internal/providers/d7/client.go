package d7

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/models"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 64 * 1024
)

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises the behaviour of the D7 client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used to talk to D7.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no effect
// when WithHTTPClient supplies a client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBodyLimit adjusts how many bytes are read from a response body.
func WithBodyLimit(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBodyBytes = limit
		}
	}
}

// Client is the HTTPS transport to the D7 API: it POSTs JSON and returns the
// response JSON.
type Client struct {
	logger       zerolog.Logger
	httpClient   HTTPClient
	timeout      time.Duration
	maxBodyBytes int64
}

// NewClient constructs a D7 transport.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	c := &Client{
		logger:       logger,
		timeout:      defaultTimeout,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// PostJSON posts body to url. Non-2xx responses and network failures are
// returned as *common.TransportError.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("d7 provider: new request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.TransportError{Err: fmt.Errorf("d7 provider: http do: %w", err)}
	}
	defer resp.Body.Close()

	raw, overflow, err := c.readBody(resp.Body)
	if err != nil {
		return nil, &common.TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Str("url", url).
		Int("http_status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("d7 provider response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &common.TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Err:        fmt.Errorf("d7 provider: http %d: %s", resp.StatusCode, errorMessage(resp.StatusCode, raw)),
		}
	}

	if overflow {
		return nil, &common.TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Err:        fmt.Errorf("d7 provider: response body exceeds %d bytes", c.maxBodyBytes),
		}
	}

	return asJSON(raw), nil
}

// readBody reads at most maxBodyBytes. overflow reports whether the body was
// longer than that.
func (c *Client) readBody(rc io.ReadCloser) (data []byte, overflow bool, err error) {
	if rc == nil {
		return nil, false, nil
	}
	data, err = io.ReadAll(io.LimitReader(rc, c.maxBodyBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("d7 provider: read body: %w", err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		return data[:c.maxBodyBytes], true, nil
	}
	return data, false, nil
}

// asJSON returns raw when it is JSON. Anything else is returned as a JSON
// string so the response can still be carried as a row.
func asJSON(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("{}")
	}
	if json.Valid(trimmed) {
		out := make([]byte, len(trimmed))
		copy(out, trimmed)
		return out
	}
	quoted, _ := models.EncodeWire(string(raw))
	return quoted
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorMessage(status int, raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if msg := detailMessage(body.Detail); msg != "" {
			return msg
		}
		if strings.TrimSpace(body.Message) != "" {
			return strings.TrimSpace(body.Message)
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return common.TruncateRaw(msg, common.DefaultRawBodyLimit)
	}
	return http.StatusText(status)
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var d errorDetail
	if err := json.Unmarshal(raw, &d); err == nil {
		switch {
		case d.Code != "" && d.Message != "":
			return d.Code + ": " + d.Message
		case d.Message != "":
			return d.Message
		case d.Code != "":
			return d.Code
		}
	}
	return ""
}

var _ common.Transport = (*Client)(nil)
