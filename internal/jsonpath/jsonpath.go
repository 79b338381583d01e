// Package jsonpath adapts a generic json-path engine to the evaluator shape
// the batch core expects. The engine itself is an external collaborator; this
// package only presents it as a pure function.
package jsonpath

import (
	"fmt"

	paessler "github.com/PaesslerAG/jsonpath"
)

// Evaluate applies a json-path expression to a decoded JSON document and
// returns the selected value. Wildcard selections such as $.ids.* yield an
// array of matches.
func Evaluate(path string, doc interface{}) (interface{}, error) {
	value, err := paessler.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate json-path %q: %w", path, err)
	}
	return value, nil
}
