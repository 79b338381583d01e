package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
)

// HeaderPair is one flattened response header.
type HeaderPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is the published response of one batch item. Body is the raw response
// text for dispatched items and a structured error object for failed ones.
// Records are immutable once stored.
type Record struct {
	Code    int
	Body    interface{}
	Headers []HeaderPair

	// includeHeaders controls whether a headers key is emitted at all; when
	// set, error records still carry an empty list.
	includeHeaders bool
}

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// MarshalJSON emits {code, body, headers?}; the headers key is omitted
// entirely when the batch was run with includeHeaders disabled.
func (r *Record) MarshalJSON() ([]byte, error) {
	if !r.includeHeaders {
		return json.Marshal(struct {
			Code int         `json:"code"`
			Body interface{} `json:"body"`
		}{r.Code, r.Body})
	}

	headers := r.Headers
	if headers == nil {
		headers = []HeaderPair{}
	}
	return json.Marshal(struct {
		Code    int          `json:"code"`
		Body    interface{}  `json:"body"`
		Headers []HeaderPair `json:"headers"`
	}{r.Code, r.Body, headers})
}

// FormatResult shapes a dispatcher result into the published record shape.
func FormatResult(res *DispatchResult, includeHeaders bool) *Record {
	rec := &Record{
		Code:           res.Code,
		Body:           res.Body,
		includeHeaders: includeHeaders,
	}
	if includeHeaders {
		rec.Headers = flattenHeader(res.Header)
	}
	return rec
}

// FormatError converts an item failure into its record. Classified errors keep
// their status and kind name; anything else surfaces as a 500 with an empty
// kind name.
func FormatError(err error, includeHeaders bool) *Record {
	code := http.StatusInternalServerError
	kind := ""

	var berr *Error
	if errors.As(err, &berr) {
		code = berr.Status
		kind = string(berr.Kind)
	}

	return &Record{
		Code:           code,
		Body:           errorBody{Error: err.Error(), Type: kind},
		includeHeaders: includeHeaders,
	}
}

// flattenHeader turns a multi-value header map into a name-sorted sequence of
// pairs, taking the first value for each name.
func flattenHeader(header http.Header) []HeaderPair {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]HeaderPair, 0, len(names))
	for _, name := range names {
		values := header[name]
		if len(values) == 0 {
			continue
		}
		pairs = append(pairs, HeaderPair{Name: name, Value: values[0]})
	}
	return pairs
}

// ResponseSet is the insertion-ordered collection of item records produced by
// one batch run. It is append-only while the batch executes and discarded once
// the caller has read it.
type ResponseSet struct {
	keys    []string
	records map[string]*Record

	// nextIndex is the numeric identity handed to the next unnamed item:
	// one past the highest integer key recorded so far. Explicit names do not
	// advance it unless they are themselves integers, so explicit names and
	// generated numbers share one key space.
	nextIndex int
}

// NewResponseSet creates an empty ResponseSet.
func NewResponseSet() *ResponseSet {
	return &ResponseSet{
		records: make(map[string]*Record),
	}
}

// Add stores a record under the given identity. Storing under an identity that
// already exists replaces the record without adding a key.
func (s *ResponseSet) Add(identity string, rec *Record) {
	if _, ok := s.records[identity]; !ok {
		s.keys = append(s.keys, identity)
	}
	s.records[identity] = rec

	if n, err := strconv.Atoi(identity); err == nil && n >= s.nextIndex {
		s.nextIndex = n + 1
	}
}

// NextIndex returns the numeric identity the next unnamed item would receive.
func (s *ResponseSet) NextIndex() int {
	return s.nextIndex
}

// Get returns the record stored under the given identity.
func (s *ResponseSet) Get(identity string) (*Record, bool) {
	rec, ok := s.records[identity]
	return rec, ok
}

// Len returns the number of recorded responses.
func (s *ResponseSet) Len() int {
	return len(s.keys)
}

// Keys returns the identities in execution order.
func (s *ResponseSet) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// MarshalJSON emits one JSON object whose keys appear in execution order.
func (s *ResponseSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(s.records[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
