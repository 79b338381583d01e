package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
)

// IsCacheable reports whether a sub-request may be served from cache. Only GET
// dispatches qualify; everything else is assumed to have side effects.
func IsCacheable(method string) bool {
	return strings.EqualFold(method, http.MethodGet)
}

// GenerateKey builds a stable cache key from the sub-request's method, its
// fully resolved relative URL and the extracted parameter map. Params are
// folded in name order so map iteration cannot produce differing keys.
func GenerateKey(method, relativeURL string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('|')
	b.WriteString(relativeURL)
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
