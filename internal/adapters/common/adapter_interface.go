package common

import (
	"context"
	"encoding/json"

	"github.com/example/d7-messaging/internal/models"
)

// Dispatcher sends a built payload for one channel and returns the provider's
// parsed JSON response.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload *models.OutboundPayload, apiKey string) (json.RawMessage, error)
}

// Transport POSTs a JSON body with the supplied headers. It returns the parsed
// response on success and a failure otherwise.
type Transport interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (json.RawMessage, error)
}

// Header names and values shared by every dispatch.
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	ContentTypeJSON     = "application/json"
)

// Headers returns the fixed header set for a send authorised by apiKey.
func Headers(apiKey string) map[string]string {
	return map[string]string{
		HeaderContentType:   ContentTypeJSON,
		HeaderAuthorization: "Bearer " + apiKey,
	}
}
