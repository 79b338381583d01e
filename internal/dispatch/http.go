// Package dispatch provides the concrete implementations of the batch core's
// dispatch collaborator.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"batchgate/internal/batch"
)

// RetryConfig holds retry configuration for transport failures.
type RetryConfig struct {
	Enabled     bool
	MaxAttempts int
}

// Forwarder dispatches sub-requests to a single backend over HTTP. A backend
// answer of any status code is a valid dispatch result; only transport
// failures are errors.
type Forwarder struct {
	baseURL string
	client  *http.Client
	retry   RetryConfig
	logger  zerolog.Logger
}

// NewForwarder creates a Forwarder targeting the given base URL.
//
// The underlying client carries no timeout: batch execution is strictly
// sequential with no per-item deadline, so a slow sub-request blocks the
// whole batch rather than being cut off.
func NewForwarder(baseURL string, retry RetryConfig, logger zerolog.Logger) *Forwarder {
	return &Forwarder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
		retry:   retry,
		logger:  logger.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch implements batch.Dispatcher. Transport failures are retried up to
// the configured number of attempts; when all attempts fail the item receives
// a 502 dispatch error.
func (f *Forwarder) Dispatch(ctx context.Context, method, relativeURL string, params map[string]string) (*batch.DispatchResult, error) {
	attempts := 1
	if f.retry.Enabled && f.retry.MaxAttempts > 1 {
		attempts = f.retry.MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := f.dispatchOnce(ctx, method, relativeURL, params)
		if err == nil {
			return res, nil
		}
		lastErr = err
		f.logger.Debug().
			Err(err).
			Int("attempt", attempt).
			Str("method", method).
			Str("url", relativeURL).
			Msg("dispatch attempt failed")
		if ctx.Err() != nil {
			break
		}
	}

	return nil, batch.NewDispatchError(http.StatusBadGateway,
		fmt.Sprintf("failed to dispatch %s %s: %v", method, relativeURL, lastErr))
}

func (f *Forwarder) dispatchOnce(ctx context.Context, method, relativeURL string, params map[string]string) (*batch.DispatchResult, error) {
	var body io.Reader
	withForm := hasRequestBody(method) && len(params) > 0
	if withForm {
		body = strings.NewReader(encodeParams(params))
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), f.baseURL+relativeURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if withForm {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &batch.DispatchResult{
		Code:   resp.StatusCode,
		Body:   string(data),
		Header: resp.Header,
	}, nil
}

// hasRequestBody reports whether params should travel as a form body rather
// than staying in the query string.
func hasRequestBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// encodeParams joins the parameter map into a form body in name order. Values
// were never percent-decoded, so they are written back verbatim.
func encodeParams(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}
