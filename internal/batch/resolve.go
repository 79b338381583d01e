package batch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Resolver rewrites dependency tokens in a relative URL using responses
// recorded earlier in the same batch.
type Resolver struct {
	eval PathEvaluator
}

// NewResolver creates a Resolver backed by the given json-path evaluator.
func NewResolver(eval PathEvaluator) *Resolver {
	return &Resolver{eval: eval}
}

// ResolveURL replaces every token in url with the JSON text selected from its
// dependency's response body. Tokens are processed in URL-appearance order and
// all of them must resolve before the URL is usable for dispatch.
//
// The replacement is plain string substitution of the token's raw text; the
// substituted JSON is not URL-encoded.
func (r *Resolver) ResolveURL(url string, responses *ResponseSet) (string, error) {
	tokens, err := ParseTokens(url)
	if err != nil {
		return "", err
	}

	resolved := url
	for _, token := range tokens {
		value, err := r.resolveToken(url, token, responses)
		if err != nil {
			return "", err
		}
		resolved = strings.ReplaceAll(resolved, token.Raw, value)
	}
	return resolved, nil
}

// resolveToken validates the token's dependency and extracts its substitution
// value as JSON text. Decode and evaluation failures are charged to the item
// owning the URL, not to the dependency.
func (r *Resolver) resolveToken(url string, token Token, responses *ResponseSet) (string, error) {
	dep, ok := responses.Get(token.Dependency)
	if !ok {
		return "", NewDependencyNotFound(url, token.Dependency)
	}
	if dep.Code != http.StatusOK {
		return "", NewDependencyFailed(url, token.Dependency)
	}

	body, ok := dep.Body.(string)
	if !ok {
		return "", fmt.Errorf("response body of dependency %q is not raw text", token.Dependency)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return "", fmt.Errorf("failed to decode body of dependency %q: %w", token.Dependency, err)
	}

	value, err := r.eval(token.Path, doc)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate %q against dependency %q: %w", token.Path, token.Dependency, err)
	}

	text, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value selected by %q: %w", token.Path, err)
	}
	return string(text), nil
}
