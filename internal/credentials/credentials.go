// Package credentials resolves the API key used to authorise a send, either
// from the request itself or from an external credential store.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/models"
)

const (
	fieldAPIKey     = "apiKey"
	fieldCredential = "credential"
)

// ErrNotFound is returned by stores that hold no credential under a name.
var ErrNotFound = errors.New("credential not found")

// Credential is the stored D7 credential.
type Credential struct {
	APIKey string
}

// Store looks credentials up by name.
type Store interface {
	Lookup(ctx context.Context, name string) (Credential, error)
}

// Literal resolves the key given inline on the request.
type Literal struct{}

// ResolveAPIKey returns the request's apiKey.
func (Literal) ResolveAPIKey(_ context.Context, req *models.ComposeRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.APIKey) == "" {
		return "", common.NewMissingField(fieldAPIKey)
	}
	return strings.TrimSpace(req.APIKey), nil
}

// StoreResolver resolves keys from a Store. A request may name one of the
// allowed credentials; the default name is used when it does not.
type StoreResolver struct {
	logger      zerolog.Logger
	store       Store
	defaultName string
	allowed     map[string]struct{}
}

// NewStoreResolver constructs a resolver backed by store. Requests may only
// select defaultName or one of allowed.
func NewStoreResolver(store Store, defaultName string, logger zerolog.Logger, allowed ...string) (*StoreResolver, error) {
	if store == nil {
		return nil, errors.New("credentials: store is required")
	}
	defaultName = strings.TrimSpace(defaultName)
	if defaultName == "" {
		defaultName = models.DefaultCredentialName
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	names := map[string]struct{}{defaultName: {}}
	for _, name := range allowed {
		if name = strings.TrimSpace(name); name != "" {
			names[name] = struct{}{}
		}
	}
	return &StoreResolver{logger: logger, store: store, defaultName: defaultName, allowed: names}, nil
}

// ResolveAPIKey looks the named credential up and returns its key. Names
// outside the allowlist are rejected before the store is consulted.
func (r *StoreResolver) ResolveAPIKey(ctx context.Context, req *models.ComposeRequest) (string, error) {
	name := r.defaultName
	if req != nil && strings.TrimSpace(req.CredentialName) != "" {
		name = strings.TrimSpace(req.CredentialName)
	}
	if _, ok := r.allowed[name]; !ok {
		r.logger.Warn().Str("credential", name).Msg("credential name not allowed")
		return "", common.NewInvalidParameter(fieldCredential, name)
	}

	cred, err := r.store.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Debug().Str("credential", name).Msg("credential not found")
			return "", common.NewMissingField(fieldAPIKey)
		}
		return "", fmt.Errorf("credentials: lookup %q: %w", name, err)
	}
	if strings.TrimSpace(cred.APIKey) == "" {
		return "", common.NewMissingField(fieldAPIKey)
	}
	return strings.TrimSpace(cred.APIKey), nil
}

// EnvKey maps a credential name to its variable name: "d7Api" -> "D7_API_KEY".
func EnvKey(name string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + "_KEY"
}
