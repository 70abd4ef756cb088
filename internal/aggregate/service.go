// Package aggregate routes price requests to the upstream adapter for the
// asset class and normalizes what comes back.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"assetprice/internal/logging"
	"assetprice/internal/provider"
	"assetprice/internal/provider/selector"
)

// TopCount is the length of a ranked list.
const TopCount = 10

// Service answers quote and top list requests. It keeps no state between
// calls, so its results are safe to memoize.
type Service struct {
	log      *slog.Logger
	adapters map[provider.AssetClass]provider.Adapter
}

// New registers one adapter per asset class; a later adapter for the same
// class replaces an earlier one. A nil logger discards output.
func New(log *slog.Logger, adapters ...provider.Adapter) *Service {
	if log == nil {
		log = logging.Discard()
	}
	s := &Service{log: log, adapters: make(map[provider.AssetClass]provider.Adapter, len(adapters))}
	for _, a := range adapters {
		s.adapters[a.Class()] = a
	}
	return s
}

func (s *Service) adapter(class provider.AssetClass) (provider.Adapter, error) {
	a, ok := s.adapters[class]
	if !ok {
		return nil, fmt.Errorf("%w: no provider for %q", provider.ErrInvalidAssetClass, class)
	}
	return a, nil
}

// GetPrice returns the current quote of one asset. Unknown identifiers
// fail with provider.ErrAssetNotFound; upstream failures with
// provider.ErrUpstreamUnavailable.
func (s *Service) GetPrice(ctx context.Context, class provider.AssetClass, id, currency string) (provider.Quote, error) {
	a, err := s.adapter(class)
	if err != nil {
		return provider.Quote{}, err
	}

	raw, err := a.FetchQuote(ctx, id, currency)
	if err != nil {
		err = classify(err, fmt.Sprintf("%s %s", class, id))
		s.log.LogAttrs(ctx, level(err), "get price failed",
			slog.String("provider", a.Name()),
			slog.String("asset_type", string(class)),
			slog.String("symbol", id),
			slog.String("err", err.Error()))
		return provider.Quote{}, err
	}
	return NormalizeQuote(raw, class, currency), nil
}

// GetTopAssets returns at most TopCount assets of class ranked by
// criterion, in provider order. Any upstream failure fails the whole list.
func (s *Service) GetTopAssets(ctx context.Context, class provider.AssetClass, criterion provider.Criterion, currency string) ([]provider.RankedAsset, error) {
	a, err := s.adapter(class)
	if err != nil {
		return nil, err
	}

	token := selector.ForClass(class, criterion)
	items, err := a.ListTop(ctx, string(token), currency, TopCount)
	if err != nil {
		// The request named no asset, so a vanished list member is an
		// upstream inconsistency rather than a client error.
		if !errors.Is(err, provider.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", provider.ErrUpstreamUnavailable, err)
		}
		s.log.LogAttrs(ctx, slog.LevelError, "get top assets failed",
			slog.String("provider", a.Name()),
			slog.String("asset_type", string(class)),
			slog.String("sort_by", string(criterion)),
			slog.String("token", string(token)),
			slog.String("err", err.Error()))
		return nil, err
	}

	if len(items) > TopCount {
		items = items[:TopCount]
	}
	out := make([]provider.RankedAsset, 0, len(items))
	for _, it := range items {
		out = append(out, NormalizeListItem(it, class, currency))
	}
	return out, nil
}

// classify maps adapter errors onto the domain taxonomy.
func classify(err error, what string) error {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		return fmt.Errorf("%w: %s: %w", provider.ErrAssetNotFound, what, err)
	case errors.Is(err, provider.ErrUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", provider.ErrUpstreamUnavailable, err)
	}
}

func level(err error) slog.Level {
	if errors.Is(err, provider.ErrAssetNotFound) {
		return slog.LevelWarn
	}
	return slog.LevelError
}
