// Package app assembles the service stack shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"assetprice/internal/aggregate"
	"assetprice/internal/cache"
	"assetprice/internal/config"
	"assetprice/internal/httpx"
	"assetprice/internal/logging"
	"assetprice/internal/provider/coingecko"
	"assetprice/internal/provider/yahoo"
)

// NewService wires both upstream adapters through one pooled HTTP client.
func NewService(cfg config.Config, log *slog.Logger) (*aggregate.Service, error) {
	if log == nil {
		log = logging.Discard()
	}
	httpClient := httpx.New(cfg.RequestTimeout())

	yOpts := []yahoo.Option{yahoo.WithBaseURL(cfg.Yahoo.BaseURL), yahoo.WithHTTPClient(httpClient)}
	if cfg.Yahoo.Crumb != "" {
		yOpts = append(yOpts, yahoo.WithCrumb(cfg.Yahoo.Crumb, cfg.Yahoo.Cookie))
	}
	yc, err := yahoo.NewClient(yOpts...)
	if err != nil {
		return nil, fmt.Errorf("yahoo client: %w", err)
	}

	cgOpts := []coingecko.Option{coingecko.WithBaseURL(cfg.CoinGecko.BaseURL), coingecko.WithHTTPClient(httpClient)}
	if cfg.CoinGecko.APIKey != "" {
		cgOpts = append(cgOpts, coingecko.WithAPIKey(cfg.CoinGecko.APIKey, cfg.CoinGecko.APIKeyHeader))
	} else {
		log.Warn("coingecko api key not set; using the public rate limit")
	}
	cg, err := coingecko.NewClient(cgOpts...)
	if err != nil {
		return nil, fmt.Errorf("coingecko client: %w", err)
	}

	return aggregate.New(log,
		yahoo.New(yahoo.Config{Name: "Yahoo", MaxConcurrency: cfg.Yahoo.MaxConcurrency}, yc),
		coingecko.New(coingecko.Config{Name: "CoinGecko"}, cg),
	), nil
}

// NewStore opens the configured cache backend. A nil Store disables caching.
func NewStore(ctx context.Context, cfg config.Config) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		r, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.BackendNone:
		return nil, func() {}, nil
	default:
		return cache.NewMemory(cfg.Cache.MaxItems), func() {}, nil
	}
}
