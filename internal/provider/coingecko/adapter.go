package coingecko

import (
	"context"
	"fmt"
	"strings"

	"assetprice/internal/provider"
)

type Config struct {
	Name string // display name, default: CoinGecko
}

// Adapter serves cryptocurrencies from CoinGecko.
type Adapter struct {
	cfg    Config
	client *Client
}

func New(cfg Config, client *Client) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "CoinGecko"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Class() provider.AssetClass { return provider.Crypto }

// FetchQuote looks up one coin by CoinGecko id. A payload without the id
// key, or without a price in currency, is provider.ErrNotFound.
func (a *Adapter) FetchQuote(ctx context.Context, id, currency string) (provider.RawQuote, error) {
	body, err := a.client.SimplePrice(ctx, id, currency)
	if err != nil {
		return provider.RawQuote{}, err
	}
	sp, ok := body[id]
	if !ok || sp == nil {
		return provider.RawQuote{}, fmt.Errorf("%w: cryptocurrency %s", provider.ErrNotFound, id)
	}

	cur := strings.ToLower(currency)
	price := sp[cur]
	if price == nil {
		return provider.RawQuote{}, fmt.Errorf("%w: cryptocurrency %s has no %s price", provider.ErrNotFound, id, cur)
	}

	raw := provider.RawQuote{
		ID:       id,
		Symbol:   id,
		Currency: cur,
		Price:    price,
		Change:   sp[cur+"_24h_change"],
		Volume:   sp[cur+"_24h_vol"],
	}
	if ts := sp["last_updated_at"]; ts != nil {
		secs := int64(*ts)
		raw.Time.Unix = &secs
	}
	return raw, nil
}

// ListTop returns the first page of the markets listing ordered by token.
// The listing already carries every field, so there is no detail stage.
func (a *Adapter) ListTop(ctx context.Context, token, currency string, count int) ([]provider.RawQuote, error) {
	markets, err := a.client.Markets(ctx, token, currency, count, 1)
	if err != nil {
		return nil, err
	}
	out := make([]provider.RawQuote, 0, len(markets))
	for _, m := range markets {
		out = append(out, provider.RawQuote{
			ID:            m.ID,
			Symbol:        m.Symbol,
			Name:          m.Name,
			Price:         m.CurrentPrice,
			MarketCap:     m.MarketCap,
			Volume:        m.TotalVolume,
			Change:        m.PriceChange24h,
			ChangePercent: m.PriceChangePercentage24h,
			Time:          provider.Timestamp{Text: m.LastUpdated},
		})
	}
	return out, nil
}
