package cache

import (
	"fmt"
	"strconv"

	"github.com/zeebo/xxh3"
)

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// HashKey returns the hex xxh3 hash of key, for keys built from long or
// untrusted strings such as URLs.
func HashKey(key string) string {
	return strconv.FormatUint(xxh3.HashString(key), 16)
}
