package insights

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// PageKeyLength is the number of hex characters kept from the URL digest.
const PageKeyLength = 12

// EncodePageKey derives the opaque page identifier from a URL. Keys are truncated
// digests and only assumed unique within one site's page set.
func EncodePageKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:PageKeyLength]
}

// ResolvePageKey returns the first URL, in ascending order, whose key equals key.
// Resolution rehashes every candidate, so it is linear in the number of pages.
func ResolvePageKey(urls []string, key string) (string, bool) {
	if len(key) != PageKeyLength {
		return "", false
	}
	sorted := make([]string, len(urls))
	copy(sorted, urls)
	sort.Strings(sorted)
	for _, url := range sorted {
		if EncodePageKey(url) == key {
			return url, true
		}
	}
	return "", false
}
