package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used to classify failures with errors.Is.
var (
	ErrMissingField     = errors.New("missing field")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrTransport        = errors.New("transport error")
)

// MissingFieldError reports a required input that is absent or empty.
type MissingFieldError struct {
	Field string
}

// NewMissingField returns a MissingFieldError for field.
func NewMissingField(field string) error {
	return &MissingFieldError{Field: field}
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidParameterError reports an enum value that is not recognised.
type InvalidParameterError struct {
	Field string
	Value string
}

// NewInvalidParameter returns an InvalidParameterError for field and value.
func NewInvalidParameter(field, value string) error {
	return &InvalidParameterError{Field: field, Value: value}
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid value %q for parameter %q", e.Value, e.Field)
}

// Is reports whether target is ErrInvalidParameter.
func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// TransportError is an outbound call failure. Error returns the underlying
// message unchanged so callers see exactly what the transport reported.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

// AsTransportError wraps err in a TransportError unless it already is one.
// A nil err yields nil.
func AsTransportError(err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Err: err}
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("http %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return ErrTransport.Error()
}

// Unwrap exposes the wrapped error.
func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Temporary reports whether the failure looks transient: rate limiting,
// server errors, or a failure before any response was received.
func (e *TransportError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

// FieldOf returns the offending field of a MissingFieldError or
// InvalidParameterError, or "" for any other error.
func FieldOf(err error) string {
	var mf *MissingFieldError
	if errors.As(err, &mf) {
		return mf.Field
	}
	var ip *InvalidParameterError
	if errors.As(err, &ip) {
		return ip.Field
	}
	return ""
}
