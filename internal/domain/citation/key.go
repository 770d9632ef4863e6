package citation

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// SyntheticKey derives a citation identity for sources that carry no document
// ID. URL-bearing sources key on the URL; the rest hash the title plus the
// marker seed, so identical fallback identities collapse into one entry.
func SyntheticKey(url, title string, marker int) string {
	if url != "" {
		return "url::" + url
	}
	seed := title + "|"
	if marker > 0 {
		seed += strconv.Itoa(marker)
	}
	sum := sha1.Sum([]byte(seed))
	return "doc::" + hex.EncodeToString(sum[:])[:12]
}
