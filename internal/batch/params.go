package batch

import "strings"

// ParseQueryParams builds the flat parameter map handed to the dispatcher from
// the query portion of a relative URL. The URL is split at its first '?', the
// query on '&', and each pair at its first '='. Values are passed through
// verbatim: no percent-decoding is performed.
func ParseQueryParams(relativeURL string) map[string]string {
	params := make(map[string]string)

	_, query, ok := strings.Cut(relativeURL, "?")
	if !ok || query == "" {
		return params
	}

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		params[key] = value
	}
	return params
}
