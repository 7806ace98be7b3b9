package services

import (
	"strings"

	"github.com/google/uuid"
)

// NewSlug builds a URL slug from a title plus a short random suffix. The
// suffix keeps forked copies from colliding with the source slug.
func NewSlug(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "untitled"
	}
	return base + "-" + uuid.NewString()[:8]
}
