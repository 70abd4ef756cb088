package aggregate

import (
	"strings"
	"time"

	"assetprice/internal/provider"
)

// NormalizeQuote maps a raw upstream record onto the unified Quote.
// Missing numeric fields become 0 and missing strings stay empty. Equity
// currencies are upper cased and crypto currencies lower cased, matching
// each provider's own convention.
func NormalizeQuote(raw provider.RawQuote, class provider.AssetClass, currency string) provider.Quote {
	q := provider.Quote{
		AssetType:     class,
		Price:         num(raw.Price),
		Change:        num(raw.Change),
		ChangePercent: num(raw.ChangePercent),
		Volume:        num(raw.Volume),
		PreviousClose: num(raw.PreviousClose),
		Open:          num(raw.Open),
		DayHigh:       num(raw.DayHigh),
		DayLow:        num(raw.DayLow),
		Timestamp:     isoTime(raw.Time),
		MarketState:   raw.MarketState,
		Exchange:      raw.Exchange,
		ShortName:     raw.ShortName,
		LongName:      raw.LongName,
	}
	q.TradingSessionLow = q.DayLow
	q.TradingSessionHigh = q.DayHigh

	switch class {
	case provider.Crypto:
		q.Symbol = firstNonEmpty(raw.ID, raw.Symbol)
		q.Currency = strings.ToLower(currency)
	default:
		q.Symbol = firstNonEmpty(raw.Symbol, raw.ID)
		q.Currency = strings.ToUpper(firstNonEmpty(raw.Currency, currency))
	}
	return q
}

// NormalizeListItem maps a raw upstream record onto a RankedAsset. Fields
// the provider did not send stay nil.
func NormalizeListItem(raw provider.RawQuote, class provider.AssetClass, currency string) provider.RankedAsset {
	a := provider.RankedAsset{
		Price:         raw.Price,
		MarketCap:     raw.MarketCap,
		Volume:        raw.Volume,
		Change:        raw.Change,
		ChangePercent: raw.ChangePercent,
		Timestamp:     isoTime(raw.Time),
	}

	switch class {
	case provider.Crypto:
		a.Symbol = strings.ToUpper(firstNonEmpty(raw.Symbol, raw.ID))
		a.Name = raw.Name
		a.Currency = strings.ToLower(currency)
	default:
		a.Symbol = firstNonEmpty(raw.Symbol, raw.ID)
		a.Name = firstNonEmpty(raw.LongName, raw.ShortName, raw.Name)
		a.Currency = strings.ToUpper(firstNonEmpty(raw.Currency, currency))
	}
	return a
}

// isoTime renders the provider timestamp as RFC 3339 in UTC. Text that does
// not parse is passed through untouched. Absent timestamps stay empty
// rather than defaulting to now, so identical upstream data normalizes
// identically.
func isoTime(ts provider.Timestamp) string {
	switch {
	case ts.Unix != nil:
		return time.Unix(*ts.Unix, 0).UTC().Format(time.RFC3339)
	case ts.Text != nil:
		t, err := time.Parse(time.RFC3339Nano, *ts.Text)
		if err != nil {
			return *ts.Text
		}
		return t.UTC().Format(time.RFC3339)
	}
	return ""
}

func num(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
