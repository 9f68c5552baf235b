package composer

import (
	"strings"

	"github.com/example/d7-messaging/internal/models"
)

// SplitRecipients splits on ',' and keeps every substring as is.
func SplitRecipients(raw string) []string {
	return strings.Split(raw, ",")
}

// SplitTrimmedRecipients splits on ',' and trims surrounding whitespace from
// each entry. Order is kept; nothing is dropped or deduplicated.
func SplitTrimmedRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// WhatsAppRecipients wraps the trimmed entries as individual recipients.
func WhatsAppRecipients(raw string) []models.WhatsAppRecipient {
	parts := SplitTrimmedRecipients(raw)
	out := make([]models.WhatsAppRecipient, 0, len(parts))
	for _, p := range parts {
		out = append(out, models.WhatsAppRecipient{
			Recipient:     p,
			RecipientType: models.RecipientTypeUser,
		})
	}
	return out
}

// BodyParameterValues folds ordered pairs into a map; later keys win.
func BodyParameterValues(params []models.BodyParameter) map[string]string {
	values := make(map[string]string, len(params))
	for _, p := range params {
		values[p.Key] = p.Value
	}
	return values
}
