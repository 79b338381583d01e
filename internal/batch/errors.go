package batch

import (
	"fmt"
	"net/http"
)

// Kind names a classified batch failure. The name is produced at the error's
// construction site and published verbatim in the item's error body.
type Kind string

const (
	KindTokenParse         Kind = "TokenParseError"
	KindDependencyNotFound Kind = "DependencyNotFound"
	KindDependencyFailed   Kind = "DependencyFailed"
	KindDispatch           Kind = "DispatchError"
)

// Error is a classified failure of a single batch item. Status is the HTTP
// code recorded for the owning item; the batch itself never fails.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewTokenParseError reports a malformed token body, naming the raw token text.
func NewTokenParseError(raw, reason string) *Error {
	return &Error{
		Kind:    KindTokenParse,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("malformed token %q: %s", raw, reason),
	}
}

// NewDependencyNotFound reports a token referencing a name absent from the
// responses recorded so far.
func NewDependencyNotFound(dependentURL, dependency string) *Error {
	return &Error{
		Kind:    KindDependencyNotFound,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("request %q depends on %q which has no recorded response", dependentURL, dependency),
	}
}

// NewDependencyFailed reports a token referencing a dependency whose own
// response was not a 200.
func NewDependencyFailed(dependentURL, dependency string) *Error {
	return &Error{
		Kind:    KindDependencyFailed,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("request %q depends on %q which did not complete successfully", dependentURL, dependency),
	}
}

// NewDispatchError reports a structured failure from the dispatch collaborator,
// carrying the status code the collaborator assigned to it.
func NewDispatchError(status int, message string) *Error {
	return &Error{
		Kind:    KindDispatch,
		Status:  status,
		Message: message,
	}
}
