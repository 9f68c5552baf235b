package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestMissingFieldError(t *testing.T) {
	err := NewMissingField("templateId")

	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing field sentinel: %v", err)
	}
	if errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("missing field must not match invalid parameter")
	}
	if !strings.Contains(err.Error(), "templateId") {
		t.Fatalf("expected message to name the field, got %q", err.Error())
	}
	if got := FieldOf(fmt.Errorf("compose: %w", err)); got != "templateId" {
		t.Fatalf("FieldOf = %q, want templateId", got)
	}
}

func TestInvalidParameterError(t *testing.T) {
	err := NewInvalidParameter("mediaType", "audio")

	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter sentinel: %v", err)
	}
	if !strings.Contains(err.Error(), "mediaType") || !strings.Contains(err.Error(), "audio") {
		t.Fatalf("expected message to name field and value, got %q", err.Error())
	}
	if got := FieldOf(err); got != "mediaType" {
		t.Fatalf("FieldOf = %q, want mediaType", got)
	}
}

func TestAsTransportErrorKeepsMessage(t *testing.T) {
	base := errors.New("API Error")
	wrapped := AsTransportError(base)

	if wrapped.Error() != "API Error" {
		t.Fatalf("expected verbatim message, got %q", wrapped.Error())
	}
	if !errors.Is(wrapped, ErrTransport) {
		t.Fatalf("expected transport sentinel")
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected original error to remain reachable")
	}
	if again := AsTransportError(wrapped); again != wrapped {
		t.Fatalf("expected an existing transport error to be returned as is")
	}
	if AsTransportError(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestTransportErrorTemporary(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{0, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}
	for _, tc := range cases {
		err := &TransportError{StatusCode: tc.code}
		if got := err.Temporary(); got != tc.want {
			t.Fatalf("Temporary() for %d = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestTruncateRaw(t *testing.T) {
	if got := TruncateRaw("héllo", 2); got != "hé" {
		t.Fatalf("TruncateRaw = %q", got)
	}
	if got := TruncateRaw("abc", 0); got != "" {
		t.Fatalf("expected empty string for zero limit, got %q", got)
	}
	if got := TruncateRaw("abc", 10); got != "abc" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
}

func TestHeaders(t *testing.T) {
	h := Headers("secret")
	if h[HeaderContentType] != "application/json" {
		t.Fatalf("unexpected content type %q", h[HeaderContentType])
	}
	if h[HeaderAuthorization] != "Bearer secret" {
		t.Fatalf("unexpected authorization %q", h[HeaderAuthorization])
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NewMissingField("recipients"), "missing_field"},
		{fmt.Errorf("wrapped: %w", NewInvalidParameter("channel", "fax")), "invalid_parameter"},
		{AsTransportError(errors.New("API Error")), "transport"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
