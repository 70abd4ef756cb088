package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"

	"assetprice/internal/provider"
)

type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"finance"`
}

// Screener runs a predefined screener and returns up to count ticker
// symbols in Yahoo's ranking order.
func (c *Client) Screener(ctx context.Context, scrID string, count int, opts ...Option) ([]string, error) {
	override := c.override(opts)

	query := maps.Clone(override.query)
	query.Set("scrIds", scrID)
	query.Set("count", strconv.Itoa(count))

	url := fmt.Sprintf("%s/v1/finance/screener/predefined/saved?%s", override.baseURL, query.Encode())
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

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("%w: screener %s -> %d: %s", provider.ErrUnavailable, scrID, res.StatusCode, string(b))
	}

	var body screenerResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding screener response: %w", provider.ErrUnavailable, err)
	}
	if e := body.Finance.Error; e != nil {
		return nil, fmt.Errorf("%w: screener error %s: %s", provider.ErrUnavailable, e.Code, e.Description)
	}

	var symbols = []string{}
	for _, r := range body.Finance.Result {
		for _, q := range r.Quotes {
			if q.Symbol == "" {
				continue
			}
			symbols = append(symbols, q.Symbol)
		}
	}
	if count > 0 && len(symbols) > count {
		symbols = symbols[:count]
	}
	return symbols, nil
}
