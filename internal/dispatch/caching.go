package dispatch

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"batchgate/internal/batch"
	"batchgate/internal/cache"
)

// CachingDispatcher serves repeated idempotent sub-requests from cache and
// delegates everything else to the wrapped dispatcher. Only successful GET
// results are stored.
type CachingDispatcher struct {
	next   batch.Dispatcher
	cache  cache.Cache
	logger zerolog.Logger
}

// NewCachingDispatcher wraps next with a cache layer.
func NewCachingDispatcher(next batch.Dispatcher, c cache.Cache, logger zerolog.Logger) *CachingDispatcher {
	return &CachingDispatcher{
		next:   next,
		cache:  c,
		logger: logger.With().Str("component", "dispatch-cache").Logger(),
	}
}

// Dispatch implements batch.Dispatcher.
func (d *CachingDispatcher) Dispatch(ctx context.Context, method, relativeURL string, params map[string]string) (*batch.DispatchResult, error) {
	if !cache.IsCacheable(method) {
		return d.next.Dispatch(ctx, method, relativeURL, params)
	}

	key := cache.GenerateKey(method, relativeURL, params)
	if data, ok := d.cache.Get(key); ok {
		var res batch.DispatchResult
		if err := json.Unmarshal(data, &res); err == nil {
			d.logger.Debug().Str("url", relativeURL).Str("key", key).Msg("cache hit")
			return &res, nil
		}
	}

	res, err := d.next.Dispatch(ctx, method, relativeURL, params)
	if err != nil {
		return nil, err
	}

	if res.Code >= 200 && res.Code < 300 {
		if data, err := json.Marshal(res); err == nil {
			d.cache.Set(key, data)
			d.logger.Debug().Str("url", relativeURL).Str("key", key).Msg("cached result")
		}
	}

	return res, nil
}
