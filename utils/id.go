package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a prefixed random identifier such as "family_3f9c2a1b04de".
// The 12-hex suffix keeps IDs short enough to show in URLs.
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + hex[:12]
}
