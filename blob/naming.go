package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Asset filenames encode a content-derived base hash plus a monotonic version
// counter: "{base}.{ext}" for the first upload, "{base}_vN.{ext}" after. A
// content change always yields a new filename, so clients can cache by name
// forever; the counter exists purely for cache busting.

var namePattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_-]*?)(?:_v(\d+))?\.([A-Za-z0-9]+)$`)

// ParseName splits an asset filename into base hash, version, and extension.
// A name without a _vN suffix is version 1.
func ParseName(name string) (base string, version int, ext string, err error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return "", 0, "", fmt.Errorf("malformed asset filename %q", name)
	}
	version = 1
	if m[2] != "" {
		version, err = strconv.Atoi(m[2])
		if err != nil || version < 1 {
			return "", 0, "", fmt.Errorf("malformed asset version in %q", name)
		}
	}
	return m[1], version, m[3], nil
}

// FormatName builds a filename from its parts. Version 1 has no suffix.
func FormatName(base string, version int, ext string) string {
	if version <= 1 {
		return base + "." + ext
	}
	return fmt.Sprintf("%s_v%d.%s", base, version, ext)
}

// NextVersion returns the filename the next upload of this asset should use.
// The extension may change between versions (e.g. jpg to png); pass "" to
// keep the current one.
func NextVersion(current, ext string) (string, error) {
	base, version, currentExt, err := ParseName(current)
	if err != nil {
		return "", err
	}
	if ext == "" {
		ext = currentExt
	}
	return FormatName(base, version+1, strings.ToLower(ext)), nil
}

// NewBase derives a fresh base hash from blob content. The base stays stable
// across later versions of the same logical asset.
func NewBase(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:16]
}
