// Package bypass recognizes emergency bypass requests in commit messages.
package bypass

import (
	"strings"

	"github.com/ludo-technologies/jsgate/domain"
)

// NewDetector returns a detector that fires when enabled and any line of the
// message, ignoring leading whitespace, starts with prefix. A disabled detector
// or an empty prefix never fires.
func NewDetector(enabled bool, prefix string) domain.BypassDetector {
	prefix = strings.TrimSpace(prefix)
	if !enabled || prefix == "" {
		return func(string) bool { return false }
	}

	return func(message string) bool {
		for _, line := range strings.Split(message, "\n") {
			line = strings.TrimLeft(strings.TrimSuffix(line, "\r"), " \t")
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
		return false
	}
}
