package batch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batchgate/internal/jsonpath"
)

type dispatchCall struct {
	method string
	url    string
	params map[string]string
}

// fakeDispatcher answers from a fixed url->result table and records calls.
type fakeDispatcher struct {
	results map[string]*DispatchResult
	errs    map[string]error
	calls   []dispatchCall
}

func (d *fakeDispatcher) Dispatch(_ context.Context, method, relativeURL string, params map[string]string) (*DispatchResult, error) {
	d.calls = append(d.calls, dispatchCall{method: method, url: relativeURL, params: params})
	if err, ok := d.errs[relativeURL]; ok {
		return nil, err
	}
	if res, ok := d.results[relativeURL]; ok {
		return res, nil
	}
	return &DispatchResult{Code: http.StatusNotFound, Body: "not found"}, nil
}

func newTestExecutor(d Dispatcher) *Executor {
	return NewExecutor(d, jsonpath.Evaluate, zerolog.Nop())
}

func TestExecutor_Run_ResponseCountMatchesItemCount(t *testing.T) {
	d := &fakeDispatcher{}
	e := newTestExecutor(d)

	items := []Item{
		{Method: "GET", RelativeURL: "/a"},
		{Method: "GET", RelativeURL: "/b", Name: "named"},
		{Method: "GET", RelativeURL: "/x?v={result=nope:$.id}"},
	}

	responses := e.Run(context.Background(), items, true)
	assert.Equal(t, len(items), responses.Len())
}

func TestExecutor_Run_UnnamedItemsKeyedByPosition(t *testing.T) {
	d := &fakeDispatcher{results: map[string]*DispatchResult{
		"/a": {Code: 200, Body: "a"},
		"/b": {Code: 200, Body: "b"},
		"/c": {Code: 200, Body: "c"},
	}}
	e := newTestExecutor(d)

	responses := e.Run(context.Background(), []Item{
		{Method: "GET", RelativeURL: "/a"},
		{Method: "GET", RelativeURL: "/b"},
		{Method: "GET", RelativeURL: "/c"},
	}, true)

	assert.Equal(t, []string{"0", "1", "2"}, responses.Keys())
}

func TestExecutor_Run_MixedNameAndNumberKeySpace(t *testing.T) {
	d := &fakeDispatcher{results: map[string]*DispatchResult{
		"/x?v=1":       {Code: 200, Body: `{"ids":[7,8]}`},
		"/y?ids=[7,8]": {Code: 200, Body: "books"},
	}}
	e := newTestExecutor(d)

	responses := e.Run(context.Background(), []Item{
		{Method: "GET", Name: "a", RelativeURL: "/x?v=1"},
		{Method: "GET", RelativeURL: "/y?ids={result=a:$.ids.*}"},
	}, true)

	assert.Equal(t, []string{"a", "0"}, responses.Keys())

	// The dependent item dispatched with the token substituted.
	require.Len(t, d.calls, 2)
	assert.Equal(t, "/y?ids=[7,8]", d.calls[1].url)
	assert.Equal(t, map[string]string{"ids": "[7,8]"}, d.calls[1].params)

	rec, ok := responses.Get("0")
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "books", rec.Body)
}

func TestExecutor_Run_DependencyNotFoundFailsOnlyDependentItem(t *testing.T) {
	d := &fakeDispatcher{results: map[string]*DispatchResult{
		"/ok": {Code: 200, Body: "fine"},
	}}
	e := newTestExecutor(d)

	responses := e.Run(context.Background(), []Item{
		{Method: "GET", RelativeURL: "/x?v={result=ghost:$.id}"},
		{Method: "GET", RelativeURL: "/ok"},
	}, true)

	require.Equal(t, 2, responses.Len())

	failed, _ := responses.Get("0")
	assert.Equal(t, http.StatusBadRequest, failed.Code)
	body := failed.Body.(errorBody)
	assert.Contains(t, body.Error, "ghost")
	assert.Equal(t, "DependencyNotFound", body.Type)

	// The failure never reached the dispatcher, and the next item still ran.
	require.Len(t, d.calls, 1)
	assert.Equal(t, "/ok", d.calls[0].url)

	next, _ := responses.Get("1")
	assert.Equal(t, http.StatusOK, next.Code)
}

func TestExecutor_Run_FailedDependencyFailsDependent(t *testing.T) {
	d := &fakeDispatcher{results: map[string]*DispatchResult{
		"/broken": {Code: http.StatusInternalServerError, Body: "oops"},
	}}
	e := newTestExecutor(d)

	responses := e.Run(context.Background(), []Item{
		{Method: "GET", Name: "dep", RelativeURL: "/broken"},
		{Method: "GET", RelativeURL: "/x?v={result=dep:$.id}"},
	}, true)

	rec, _ := responses.Get("0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DependencyFailed", rec.Body.(errorBody).Type)
}

func TestExecutor_Run_DispatchErrorKeepsStatus(t *testing.T) {
	d := &fakeDispatcher{errs: map[string]error{
		"/down": NewDispatchError(http.StatusBadGateway, "backend unreachable"),
	}}
	e := newTestExecutor(d)

	responses := e.Run(context.Background(), []Item{
		{Method: "GET", RelativeURL: "/down"},
	}, true)

	rec, _ := responses.Get("0")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "DispatchError", rec.Body.(errorBody).Type)
}

func TestExecutor_Run_UnexpectedErrorBecomes500(t *testing.T) {
	d := &fakeDispatcher{errs: map[string]error{
		"/weird": errors.New("boom"),
	}}
	e := newTestExecutor(d)

	responses := e.Run(context.Background(), []Item{
		{Method: "GET", RelativeURL: "/weird"},
		{Method: "GET", RelativeURL: "/after"},
	}, true)

	rec, _ := responses.Get("0")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "", rec.Body.(errorBody).Type)

	// The batch carried on.
	assert.Equal(t, 2, responses.Len())
}

func TestExecutor_Run_IncludeHeadersFalseOmitsHeadersEverywhere(t *testing.T) {
	d := &fakeDispatcher{results: map[string]*DispatchResult{
		"/ok": {Code: 200, Body: "fine", Header: http.Header{"X-A": {"1"}}},
	}}
	e := newTestExecutor(d)

	responses := e.Run(context.Background(), []Item{
		{Method: "GET", RelativeURL: "/ok"},
		{Method: "GET", RelativeURL: "/x?v={result=ghost:$.id}"},
	}, false)

	data, err := json.Marshal(responses)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for identity, rec := range decoded {
		_, hasHeaders := rec["headers"]
		assert.False(t, hasHeaders, "item %s should have no headers key", identity)
	}
}
