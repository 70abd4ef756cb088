package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"assetprice/internal/provider"
)

// Market is one entry of /coins/markets. Numeric fields are nullable
// upstream.
type Market struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChange24h           *float64 `json:"price_change_24h"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	LastUpdated              *string  `json:"last_updated"`
}

// Markets lists coins ranked by order, one page at a time.
func (c *Client) Markets(ctx context.Context, order, currency string, perPage, page int, opts ...Option) ([]Market, error) {
	override := c.override(opts)

	query := maps.Clone(override.query)
	query.Set("vs_currency", strings.ToLower(currency))
	query.Set("order", order)
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("sparkline", "false")

	url := fmt.Sprintf("%s/coins/markets?%s", override.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", provider.ErrUnavailable, err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: performing request: %w", provider.ErrUnavailable, err)
	}
	defer res.Body.Close()

	// A 404 here means a bad path or currency, not a missing coin.
	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: markets listing returned 404", provider.ErrUnavailable)
	}
	if err := checkStatus(res); err != nil {
		return nil, err
	}

	var markets []Market
	if err := json.NewDecoder(res.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("%w: decoding markets response: %w", provider.ErrUnavailable, err)
	}
	if markets == nil {
		markets = []Market{}
	}
	return markets, nil
}
