package yahoo

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"assetprice/internal/provider"
)

type Config struct {
	Name string // display name, default: Yahoo
	// MaxConcurrency caps in-flight detail lookups while building a top
	// list. 0 issues them all at once.
	MaxConcurrency int
}

// Adapter serves equities from Yahoo Finance.
type Adapter struct {
	cfg    Config
	client *Client
}

func New(cfg Config, client *Client) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Yahoo"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Class() provider.AssetClass { return provider.Equity }

// FetchQuote looks up one ticker. Yahoo answers unknown tickers with an
// empty result or a quote without a regular market price; both are
// reported as provider.ErrNotFound. currency is not sent: Yahoo quotes in
// the listing currency.
func (a *Adapter) FetchQuote(ctx context.Context, symbol, currency string) (provider.RawQuote, error) {
	quotes, err := a.client.Quote(ctx, []string{symbol})
	if err != nil {
		return provider.RawQuote{}, err
	}
	q, ok := pick(quotes, symbol)
	if !ok || q.RegularMarketPrice == nil {
		return provider.RawQuote{}, fmt.Errorf("%w: stock %s has no regular market price", provider.ErrNotFound, symbol)
	}
	return q.raw(), nil
}

// ListTop screens count tickers with the screener token and then fetches
// one detail quote per ticker concurrently. Results keep screener order. A
// failed lookup cancels the rest and fails the whole list.
func (a *Adapter) ListTop(ctx context.Context, token, currency string, count int) ([]provider.RawQuote, error) {
	symbols, err := a.client.Screener(ctx, token, count)
	if err != nil {
		return nil, err
	}

	out := make([]provider.RawQuote, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.MaxConcurrency > 0 {
		g.SetLimit(a.cfg.MaxConcurrency)
	}
	for i, symbol := range symbols {
		g.Go(func() error {
			quotes, err := a.client.Quote(gctx, []string{symbol})
			if err != nil {
				return fmt.Errorf("detail %s: %w", symbol, err)
			}
			q, ok := pick(quotes, symbol)
			if !ok {
				return fmt.Errorf("%w: screened symbol %s missing from quote response", provider.ErrUnavailable, symbol)
			}
			out[i] = q.raw()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
