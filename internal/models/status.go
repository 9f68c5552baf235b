package models

import (
	"encoding/json"
	"time"
)

// Row is the single output row produced per input: the provider response as
// returned, without reshaping.
type Row struct {
	JSON json.RawMessage `json:"json"`
}

// Result event statuses.
const (
	ResultStatusSent   = "sent"
	ResultStatusFailed = "failed"
)

// Error kinds reported on failed result events.
const (
	ErrorKindMissingField     = "missing_field"
	ErrorKindInvalidParameter = "invalid_parameter"
	ErrorKindTransport        = "transport"
	ErrorKindDecode           = "decode"
	ErrorKindUnknown          = "unknown"
)

// ResultEvent is emitted by the worker for every consumed request record.
type ResultEvent struct {
	RequestID  string    `json:"request_id"`
	Channel    string    `json:"channel,omitempty"`
	Status     string    `json:"status"`
	Row        *Row      `json:"row,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	Field      string    `json:"field,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Temporary  bool      `json:"temporary,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
