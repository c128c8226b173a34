package thumbnail

import (
	"net/url"
	"strings"
)

// NormalizeKey percent-decodes an object key as it arrives in a bucket
// notification, treating '+' as a space.
func NormalizeKey(raw string) (string, error) {
	return url.QueryUnescape(raw)
}

// DeriveThumbnailKey maps a normalized source key to its thumbnail key:
// prefix + key with spaces replaced by dashes + ".jpg", with any doubled
// path separators collapsed. Pure: the metadata record's thumbnail_key and
// later lookups depend on the same key coming out every time.
func DeriveThumbnailKey(prefix, key string) string {
	derived := prefix + strings.ReplaceAll(key, " ", "-") + ".jpg"
	for strings.Contains(derived, "//") {
		derived = strings.ReplaceAll(derived, "//", "/")
	}
	return derived
}
