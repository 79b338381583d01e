package batch

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batchgate/internal/jsonpath"
)

func okRecord(body string) *Record {
	return FormatResult(&DispatchResult{Code: http.StatusOK, Body: body}, false)
}

func TestResolver_ResolveURL(t *testing.T) {
	r := NewResolver(jsonpath.Evaluate)

	responses := NewResponseSet()
	responses.Add("get-user-books", okRecord(`{"book_ids":[1,2,3]}`))

	url, err := r.ResolveURL("/books?ids={result=get-user-books:$.book_ids.*}", responses)
	require.NoError(t, err)
	assert.Equal(t, "/books?ids=[1,2,3]", url)
}

func TestResolver_ResolveURL_NoTokens(t *testing.T) {
	r := NewResolver(jsonpath.Evaluate)

	url, err := r.ResolveURL("/books?page=1", NewResponseSet())
	require.NoError(t, err)
	assert.Equal(t, "/books?page=1", url)
}

func TestResolver_ResolveURL_RepeatedTokenReplacedEverywhere(t *testing.T) {
	r := NewResolver(jsonpath.Evaluate)

	responses := NewResponseSet()
	responses.Add("dep", okRecord(`{"id":42}`))

	url, err := r.ResolveURL("/x?a={result=dep:$.id}&b={result=dep:$.id}", responses)
	require.NoError(t, err)
	assert.Equal(t, "/x?a=42&b=42", url)
}

func TestResolver_ResolveURL_DependencyNotFound(t *testing.T) {
	r := NewResolver(jsonpath.Evaluate)

	_, err := r.ResolveURL("/x?v={result=missing:$.id}", NewResponseSet())
	require.Error(t, err)

	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, KindDependencyNotFound, berr.Kind)
	assert.Equal(t, http.StatusBadRequest, berr.Status)
	assert.Contains(t, berr.Message, "missing")
	assert.Contains(t, berr.Message, "/x?v={result=missing:$.id}")
}

func TestResolver_ResolveURL_DependencyFailed(t *testing.T) {
	r := NewResolver(jsonpath.Evaluate)

	responses := NewResponseSet()
	responses.Add("dep", FormatResult(&DispatchResult{Code: http.StatusNotFound, Body: "not found"}, false))

	_, err := r.ResolveURL("/x?v={result=dep:$.id}", responses)
	require.Error(t, err)

	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, KindDependencyFailed, berr.Kind)
	assert.Equal(t, http.StatusBadRequest, berr.Status)
	assert.Contains(t, berr.Message, "dep")
}

// A dependency body that is not valid JSON fails the dependent item with an
// unclassified error, not one of the dependency error kinds.
func TestResolver_ResolveURL_InvalidDependencyBody(t *testing.T) {
	r := NewResolver(jsonpath.Evaluate)

	responses := NewResponseSet()
	responses.Add("dep", okRecord("<html>not json</html>"))

	_, err := r.ResolveURL("/x?v={result=dep:$.id}", responses)
	require.Error(t, err)

	var berr *Error
	assert.False(t, errors.As(err, &berr))
}

func TestResolver_ResolveURL_MalformedToken(t *testing.T) {
	r := NewResolver(jsonpath.Evaluate)

	_, err := r.ResolveURL("/x?v={nodashnocol}", NewResponseSet())
	require.Error(t, err)

	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, KindTokenParse, berr.Kind)
}
