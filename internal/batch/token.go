package batch

import "strings"

// Token is a dependency placeholder embedded in a relative URL, written as
// {<kind>=<dependency-name>:<json-path>}. Raw is the full placeholder text
// including braces, exactly as it appears in the URL.
type Token struct {
	Raw        string
	Kind       string
	Dependency string
	Path       string
}

// ParseTokens scans url left to right and extracts every dependency token.
// A token starts at a '{' and ends at the FIRST following '}': the scanner
// does not balance nested braces, so a json-path containing '}' mis-splits
// deterministically and is rejected by body validation. An unclosed '{'
// terminates the scan; the remainder carries no tokens.
func ParseTokens(url string) ([]Token, error) {
	var tokens []Token
	rest := url
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return tokens, nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return tokens, nil
		}
		raw := rest[open : open+end+1]
		token, err := parseTokenBody(raw)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
		rest = rest[open+end+1:]
	}
}

// parseTokenBody splits the text between the braces at its first '=' into the
// token kind, then splits the remainder at its first ':' into dependency name
// and json-path. A body missing either separator is malformed.
func parseTokenBody(raw string) (Token, error) {
	body := raw[1 : len(raw)-1]

	kind, rest, ok := strings.Cut(body, "=")
	if !ok {
		return Token{}, NewTokenParseError(raw, "missing '=' between kind and dependency")
	}

	dependency, path, ok := strings.Cut(rest, ":")
	if !ok {
		return Token{}, NewTokenParseError(raw, "missing ':' between dependency and json-path")
	}

	return Token{
		Raw:        raw,
		Kind:       kind,
		Dependency: dependency,
		Path:       path,
	}, nil
}
