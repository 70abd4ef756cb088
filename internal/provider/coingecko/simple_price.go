package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"assetprice/internal/provider"
)

// SimplePrice is the per coin object of /simple/price, keyed by
// "<currency>", "<currency>_24h_change", "<currency>_24h_vol" and
// "last_updated_at". CoinGecko sends null for unknown values.
type SimplePrice map[string]*float64

// SimplePrice retrieves the price of one coin in currency. The returned
// map holds one entry per coin id CoinGecko recognised.
func (c *Client) SimplePrice(ctx context.Context, id, currency string, opts ...Option) (map[string]SimplePrice, error) {
	override := c.override(opts)

	query := maps.Clone(override.query)
	query.Set("ids", id)
	query.Set("vs_currencies", strings.ToLower(currency))
	query.Set("include_24hr_vol", "true")
	query.Set("include_24hr_change", "true")
	query.Set("include_last_updated_at", "true")

	url := fmt.Sprintf("%s/simple/price?%s", override.baseURL, query.Encode())
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

	if err := checkStatus(res); err != nil {
		return nil, err
	}

	var body map[string]SimplePrice
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding simple price response: %w", provider.ErrUnavailable, err)
	}
	return body, nil
}

// checkStatus maps CoinGecko statuses onto the adapter error kinds. Only an
// explicit 404 means not found.
func checkStatus(res *http.Response) error {
	switch res.StatusCode {
	case http.StatusOK:
		return nil

	case http.StatusNotFound:
		return fmt.Errorf("%w: status 404", provider.ErrNotFound)

	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: unauthorized (check api key)", provider.ErrUnavailable)

	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited", provider.ErrUnavailable)

	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return fmt.Errorf("%w: unexpected status code %d: %s", provider.ErrUnavailable, res.StatusCode, string(b))
	}
}
