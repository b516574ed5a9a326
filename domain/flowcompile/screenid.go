package flowcompile

import (
	"fmt"
	"strings"
)

const maxScreenIdLength = 64

// NormalizeScreenID turns a raw screen key into an identifier safe for the
// external wire format: upper-cased, every character outside [A-Z0-9_]
// replaced with '_', leading and trailing '_' stripped, truncated to 64
// characters. When nothing survives, SCREEN_{ordinal} is returned.
// The transform is not injective: distinct keys can normalize to the same
// id, which the publish gate checks for.
func NormalizeScreenID(rawKey string, ordinal int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(rawKey) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	id := strings.Trim(b.String(), "_")
	if len(id) > maxScreenIdLength {
		id = id[0:maxScreenIdLength]
	}
	if id == "" {
		return fmt.Sprintf("SCREEN_%d", ordinal)
	}
	return id
}
