package util

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDOr(t *testing.T) {
	const valid = "b0c9c2b0-1f3a-4d2d-9e3f-123456789abc"
	if got := RequestIDOr("  " + valid + " "); got != valid {
		t.Fatalf("expected valid id to be kept, got %q", got)
	}

	for _, input := range []string{"", "  ", "not-a-uuid"} {
		got := RequestIDOr(input)
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("expected generated uuid for %q, got %q", input, got)
		}
	}
}

func TestParseKeyValue(t *testing.T) {
	key, value, err := ParseKeyValue(" name =John=Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "name" || value != "John=Doe" {
		t.Fatalf("got %q=%q", key, value)
	}

	for _, input := range []string{"novalue", "=value"} {
		if _, _, err := ParseKeyValue(input); !errors.Is(err, ErrInvalidKeyValue) {
			t.Fatalf("expected ErrInvalidKeyValue for %q, got %v", input, err)
		}
	}
}

func TestEnsureMaxBytes(t *testing.T) {
	if err := EnsureMaxBytes("body", []byte("abcd"), 4); err != nil {
		t.Fatalf("unexpected error at limit: %v", err)
	}
	if err := EnsureMaxBytes("body", []byte("abcde"), 4); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if err := EnsureMaxBytes("body", []byte("abcde"), 0); err != nil {
		t.Fatalf("expected disabled check for zero limit, got %v", err)
	}
}
