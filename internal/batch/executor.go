package batch

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
)

// Executor runs one batch of sub-requests strictly sequentially, isolating
// per-item failures. Dependency resolution relies on this ordering: an item
// may only reference items recorded before it, so no two dispatches ever run
// concurrently within one batch and nothing aborts it.
type Executor struct {
	dispatcher Dispatcher
	resolver   *Resolver
	logger     zerolog.Logger
}

// NewExecutor creates an Executor around the injected dispatch collaborator
// and json-path evaluator.
func NewExecutor(dispatcher Dispatcher, eval PathEvaluator, logger zerolog.Logger) *Executor {
	return &Executor{
		dispatcher: dispatcher,
		resolver:   NewResolver(eval),
		logger:     logger.With().Str("component", "batch").Logger(),
	}
}

// Run executes items in submission order and returns the aggregated response
// set. An item's identity is its name when set; otherwise it receives the next
// free integer key, the way appending to a mixed-key associative array would.
// Explicit names and generated numbers share one key space.
func (e *Executor) Run(ctx context.Context, items []Item, includeHeaders bool) *ResponseSet {
	responses := NewResponseSet()

	for _, item := range items {
		identity := item.Name
		if identity == "" {
			identity = strconv.Itoa(responses.NextIndex())
		}

		rec := e.runItem(ctx, item, responses, includeHeaders)
		responses.Add(identity, rec)

		e.logger.Debug().
			Str("identity", identity).
			Str("method", item.Method).
			Str("url", item.RelativeURL).
			Int("code", rec.Code).
			Msg("recorded item response")
	}

	return responses
}

// runItem resolves, dispatches and formats a single item. Every failure is
// converted into the item's record; errors never propagate out of the batch.
func (e *Executor) runItem(ctx context.Context, item Item, responses *ResponseSet, includeHeaders bool) *Record {
	url, err := e.resolver.ResolveURL(item.RelativeURL, responses)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", item.RelativeURL).Msg("dependency resolution failed")
		return FormatError(err, includeHeaders)
	}

	params := ParseQueryParams(url)

	res, err := e.dispatcher.Dispatch(ctx, item.Method, url, params)
	if err != nil {
		e.logger.Debug().Err(err).Str("method", item.Method).Str("url", url).Msg("dispatch failed")
		return FormatError(err, includeHeaders)
	}

	return FormatResult(res, includeHeaders)
}
