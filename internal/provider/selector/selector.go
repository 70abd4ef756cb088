// Package selector maps the abstract sort criteria onto each upstream
// provider's native ranking vocabulary.
package selector

import "assetprice/internal/provider"

// Provider names an upstream vocabulary.
type Provider string

const (
	Yahoo     Provider = "yahoo"
	CoinGecko Provider = "coingecko"
)

// Token is a provider native selector: a Yahoo predefined screener id or a
// CoinGecko markets order field.
type Token string

// Yahoo predefined screeners.
const (
	ScreenerUndervaluedGrowth Token = "undervalued_growth_stocks"
	ScreenerMostActives       Token = "most_actives"
	ScreenerDayGainers        Token = "day_gainers"
)

// CoinGecko /coins/markets order fields.
const (
	OrderMarketCapDesc   Token = "market_cap_desc"
	OrderVolumeDesc      Token = "volume_desc"
	OrderPriceChangeDesc Token = "price_change_24h_desc"
)

var tables = map[Provider]map[provider.Criterion]Token{
	Yahoo: {
		provider.MarketCap:   ScreenerUndervaluedGrowth,
		provider.Volume:      ScreenerMostActives,
		provider.PriceChange: ScreenerDayGainers,
	},
	CoinGecko: {
		provider.MarketCap:   OrderMarketCapDesc,
		provider.Volume:      OrderVolumeDesc,
		provider.PriceChange: OrderPriceChangeDesc,
	},
}

// For resolves the token for a (provider, criterion) pair. Unknown criteria
// fall back to the provider's market cap token and unknown providers to
// Yahoo's table, so every pair resolves.
func For(p Provider, c provider.Criterion) Token {
	table, ok := tables[p]
	if !ok {
		table = tables[Yahoo]
	}
	if tok, ok := table[c]; ok {
		return tok
	}
	return table[provider.MarketCap]
}

// ProviderOf returns the vocabulary used for an asset class.
func ProviderOf(class provider.AssetClass) Provider {
	if class == provider.Crypto {
		return CoinGecko
	}
	return Yahoo
}

// ForClass is For(ProviderOf(class), c).
func ForClass(class provider.AssetClass, c provider.Criterion) Token {
	return For(ProviderOf(class), c)
}

// Providers lists the known vocabularies.
func Providers() []Provider { return []Provider{Yahoo, CoinGecko} }

// Criteria lists every sort criterion the tables must cover.
func Criteria() []provider.Criterion {
	return []provider.Criterion{provider.MarketCap, provider.Volume, provider.PriceChange}
}
