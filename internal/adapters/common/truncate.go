package common

import "unicode/utf8"

// DefaultRawBodyLimit is the number of characters of a provider body kept on
// errors and in logs.
const DefaultRawBodyLimit = 1024

// TruncateRaw trims raw to limit runes. A non-positive limit yields "".
func TruncateRaw(raw string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(raw) <= limit {
		return raw
	}
	return string([]rune(raw)[:limit])
}
