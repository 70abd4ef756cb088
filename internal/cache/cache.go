// Package cache memoizes aggregation responses for a bounded time window.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"assetprice/internal/logging"
	"assetprice/internal/provider"
)

// Store is an opaque key/value store with per entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Pricer is the service being memoized.
type Pricer interface {
	GetPrice(ctx context.Context, class provider.AssetClass, id, currency string) (provider.Quote, error)
	GetTopAssets(ctx context.Context, class provider.AssetClass, criterion provider.Criterion, currency string) ([]provider.RankedAsset, error)
}

// Front serves repeated requests from Store and forwards misses to Pricer.
// Errors are never cached. Concurrent misses for one key share a single
// upstream call.
type Front struct {
	P     Pricer
	Store Store // nil disables caching
	TTL   time.Duration
	Log   *slog.Logger

	sf singleflight.Group
}

// PriceKey is the cache key of a single quote request.
func PriceKey(class provider.AssetClass, id, currency string) string {
	return key("price", string(class), id, currency)
}

// TopKey is the cache key of a top list request.
func TopKey(class provider.AssetClass, criterion provider.Criterion, currency string) string {
	return key("top", string(class), string(criterion), currency)
}

func key(parts ...string) string {
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, ":")
}

func (f *Front) GetPrice(ctx context.Context, class provider.AssetClass, id, currency string) (provider.Quote, error) {
	return remember(ctx, f, PriceKey(class, id, currency), func(ctx context.Context) (provider.Quote, error) {
		return f.P.GetPrice(ctx, class, id, currency)
	})
}

func (f *Front) GetTopAssets(ctx context.Context, class provider.AssetClass, criterion provider.Criterion, currency string) ([]provider.RankedAsset, error) {
	return remember(ctx, f, TopKey(class, criterion, currency), func(ctx context.Context) ([]provider.RankedAsset, error) {
		return f.P.GetTopAssets(ctx, class, criterion, currency)
	})
}

func (f *Front) logger() *slog.Logger {
	if f.Log == nil {
		return logging.Discard()
	}
	return f.Log
}

// remember returns the cached value for key or loads, stores and returns
// it. A failing store degrades to calling load directly.
func remember[T any](ctx context.Context, f *Front, key string, load func(context.Context) (T, error)) (T, error) {
	if f.Store == nil || f.TTL <= 0 {
		return load(ctx)
	}

	b, ok, err := f.Store.Get(ctx, key)
	switch {
	case err != nil:
		f.logger().WarnContext(ctx, "cache get failed", "key", key, "err", err)
	case ok:
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		f.logger().WarnContext(ctx, "cache entry undecodable", "key", key)
	}

	// The shared load outlives any single caller; httpx still bounds each
	// upstream call.
	loadCtx := context.WithoutCancel(ctx)
	ch := f.sf.DoChan(key, func() (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			f.logger().WarnContext(loadCtx, "cache encode failed", "key", key, "err", err)
			return v, nil
		}
		if err := f.Store.Set(loadCtx, key, b, f.TTL); err != nil {
			f.logger().WarnContext(loadCtx, "cache set failed", "key", key, "err", err)
		}
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
