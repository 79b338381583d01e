package batch

import (
	"context"
	"net/http"
)

// Item describes one sub-request submitted as part of a batch.
// Name is caller-supplied; when empty the item is keyed by the number of
// responses already recorded when it starts executing.
type Item struct {
	Name        string `json:"name,omitempty"`
	Method      string `json:"method"`
	RelativeURL string `json:"relative_url"`
}

// DispatchResult is the raw outcome of executing one sub-request.
type DispatchResult struct {
	Code   int         `json:"code"`
	Body   string      `json:"body"`
	Header http.Header `json:"header,omitempty"`
}

// Dispatcher executes a single sub-request against the application's routing
// layer. The core has no dependency on any concrete transport; implementations
// live outside this package and are injected into the Executor.
type Dispatcher interface {
	Dispatch(ctx context.Context, method, relativeURL string, params map[string]string) (*DispatchResult, error)
}

// PathEvaluator evaluates a json-path expression against a decoded JSON
// document and returns the selected value. It is treated as a pure function
// supplied by the caller.
type PathEvaluator func(path string, doc interface{}) (interface{}, error)
