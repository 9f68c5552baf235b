package common

import (
	"errors"

	"github.com/example/d7-messaging/internal/models"
)

// Classify maps an error returned by the composer to a result error kind.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingField):
		return models.ErrorKindMissingField
	case errors.Is(err, ErrInvalidParameter):
		return models.ErrorKindInvalidParameter
	case errors.Is(err, ErrTransport):
		return models.ErrorKindTransport
	default:
		return models.ErrorKindUnknown
	}
}
