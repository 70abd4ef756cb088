package provider

import (
	"context"
	"errors"
	"fmt"
)

// AssetClass selects which upstream adapter serves a request.
type AssetClass string

const (
	Equity AssetClass = "stock"
	Crypto AssetClass = "crypto"
)

// ParseAssetClass maps the wire name onto an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	switch AssetClass(s) {
	case Equity, Crypto:
		return AssetClass(s), nil
	}
	return "", fmt.Errorf("%w: %q (want stock or crypto)", ErrInvalidAssetClass, s)
}

// Criterion is the caller's sort choice for ranked lists. Its meaning is
// defined per provider by the selector tables.
type Criterion string

const (
	MarketCap   Criterion = "marketCap"
	Volume      Criterion = "volume"
	PriceChange Criterion = "priceChange"
)

// ParseCriterion maps the wire name onto a Criterion; empty means MarketCap.
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(s) {
	case "":
		return MarketCap, nil
	case MarketCap, Volume, PriceChange:
		return Criterion(s), nil
	}
	return "", fmt.Errorf("%w: %q (want marketCap, volume or priceChange)", ErrInvalidCriterion, s)
}

// Adapter-level failures.
var (
	// ErrNotFound means the provider answered but knows no such instrument.
	ErrNotFound = errors.New("upstream: not found")
	// ErrUnavailable covers transport failures, non-2xx statuses and
	// malformed payloads.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Domain failures surfaced by the aggregation service.
var (
	ErrAssetNotFound       = errors.New("asset not found")
	ErrUpstreamUnavailable = ErrUnavailable
	ErrInvalidCriterion    = errors.New("invalid sort criterion")
	ErrInvalidAssetClass   = errors.New("invalid asset type")
)

// Quote is the normalized single-asset result.
type Quote struct {
	Symbol             string     `json:"symbol"`
	AssetType          AssetClass `json:"assetType"`
	Currency           string     `json:"currency"`
	Price              float64    `json:"price"`
	Change             float64    `json:"change"`
	ChangePercent      float64    `json:"changePercent"`
	Volume             float64    `json:"volume"`
	PreviousClose      float64    `json:"previousClose"`
	Open               float64    `json:"open"`
	DayHigh            float64    `json:"dayHigh"`
	DayLow             float64    `json:"dayLow"`
	Timestamp          string     `json:"timestamp"`
	MarketState        string     `json:"marketState,omitempty"`
	TradingSessionLow  float64    `json:"tradingSessionLow"`
	TradingSessionHigh float64    `json:"tradingSessionHigh"`
	Exchange           string     `json:"exchange,omitempty"`
	ShortName          string     `json:"shortName,omitempty"`
	LongName           string     `json:"longName,omitempty"`
}

// RankedAsset is one entry of a top list. Nil fields were not reported
// upstream and are omitted from JSON.
type RankedAsset struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Currency      string   `json:"currency"`
	MarketCap     *float64 `json:"marketCap,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
	Timestamp     string   `json:"timestamp,omitempty"`
}

// Timestamp keeps whatever time representation the provider sent.
type Timestamp struct {
	Unix *int64  // epoch seconds
	Text *string // provider formatted, usually RFC 3339
}

// RawQuote is an upstream record before normalization. Nil pointers mark
// fields the provider did not send.
type RawQuote struct {
	ID       string
	Symbol   string
	Currency string

	Price         *float64
	Change        *float64
	ChangePercent *float64
	Volume        *float64
	PreviousClose *float64
	Open          *float64
	DayHigh       *float64
	DayLow        *float64
	MarketCap     *float64

	MarketState string
	Exchange    string
	ShortName   string
	LongName    string
	Name        string

	Time Timestamp
}

// Adapter wraps one upstream provider behind the uniform asset query
// operations.
type Adapter interface {
	Name() string
	Class() AssetClass
	// FetchQuote looks up a single instrument. It fails with ErrNotFound
	// when the provider has no price for it.
	FetchQuote(ctx context.Context, identifier, currency string) (RawQuote, error)
	// ListTop returns up to count records in provider ranking order.
	ListTop(ctx context.Context, token string, currency string, count int) ([]RawQuote, error)
}
