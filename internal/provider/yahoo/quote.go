package yahoo

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

// Quote is one entry of the v7 quote response. Pointer fields are nil when
// Yahoo omits them, which it does for delisted or unknown instruments.
type Quote struct {
	Symbol                     string   `json:"symbol"`
	Currency                   string   `json:"currency"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	RegularMarketVolume        *float64 `json:"regularMarketVolume"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
	RegularMarketTime          *int64   `json:"regularMarketTime"`
	MarketCap                  *float64 `json:"marketCap"`
	MarketState                string   `json:"marketState"`
	Exchange                   string   `json:"exchange"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []Quote   `json:"result"`
		Error  *apiError `json:"error"`
	} `json:"quoteResponse"`
}

// Quote retrieves quotes for the given ticker symbols. Unknown symbols are
// simply absent from the result.
func (c *Client) Quote(ctx context.Context, symbols []string, opts ...Option) ([]Quote, error) {
	override := c.override(opts)

	query := maps.Clone(override.query)
	query.Set("symbols", strings.Join(symbols, ","))

	url := fmt.Sprintf("%s/v7/finance/quote?%s", override.baseURL, query.Encode())
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

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: quote %s", provider.ErrNotFound, strings.Join(symbols, ","))

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: unauthorized (crumb rejected)", provider.ErrUnavailable)

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: rate limited", provider.ErrUnavailable)

	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", provider.ErrUnavailable, res.StatusCode, string(b))
	}

	var body quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding quote response: %w", provider.ErrUnavailable, err)
	}
	if e := body.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("%w: quote error %s: %s", provider.ErrUnavailable, e.Code, e.Description)
	}
	return body.QuoteResponse.Result, nil
}

// pick returns the quote for symbol, matching case-insensitively since
// Yahoo echoes tickers upper cased.
func pick(quotes []Quote, symbol string) (Quote, bool) {
	for _, q := range quotes {
		if strings.EqualFold(q.Symbol, symbol) {
			return q, true
		}
	}
	return Quote{}, false
}

func (q Quote) raw() provider.RawQuote {
	return provider.RawQuote{
		ID:            q.Symbol,
		Symbol:        q.Symbol,
		Currency:      q.Currency,
		Price:         q.RegularMarketPrice,
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
		Volume:        q.RegularMarketVolume,
		PreviousClose: q.RegularMarketPreviousClose,
		Open:          q.RegularMarketOpen,
		DayHigh:       q.RegularMarketDayHigh,
		DayLow:        q.RegularMarketDayLow,
		MarketCap:     q.MarketCap,
		MarketState:   q.MarketState,
		Exchange:      q.Exchange,
		ShortName:     q.ShortName,
		LongName:      q.LongName,
		Time:          provider.Timestamp{Unix: q.RegularMarketTime},
	}
}
