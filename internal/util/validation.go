package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidKeyValue is returned when a key=value pair cannot be parsed.
	ErrInvalidKeyValue = errors.New("invalid key=value pair")
	// ErrTooLarge is returned when a payload exceeds its size limit.
	ErrTooLarge = errors.New("payload too large")
)

// NewRequestID returns a fresh random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// RequestIDOr returns the trimmed value when it is a valid UUID and a fresh
// identifier otherwise.
func RequestIDOr(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return NewRequestID()
	}
	if _, err := uuid.Parse(trimmed); err != nil {
		return NewRequestID()
	}
	return trimmed
}

// ParseKeyValue splits "key=value" at the first '='. The key is trimmed and
// must not be empty; the value is kept as is.
func ParseKeyValue(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKeyValue, pair)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("%w: empty key in %q", ErrInvalidKeyValue, pair)
	}
	return key, value, nil
}

// EnsureMaxBytes checks that b does not exceed max bytes. A non-positive max
// disables the check.
func EnsureMaxBytes(field string, b []byte, max int) error {
	if max <= 0 {
		return nil
	}
	if len(b) > max {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, field, len(b), max)
	}
	return nil
}
