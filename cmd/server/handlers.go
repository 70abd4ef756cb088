package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"assetprice/internal/cache"
	"assetprice/internal/provider"
)

const defaultTopCurrency = "USD"

type api struct {
	svc cache.Pricer
	log *slog.Logger
	// ready reports whether shared dependencies answer; nil means always.
	ready func(ctx context.Context) error
}

// errorBody mirrors the NestJS exception body existing clients parse.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func newHandler(svc cache.Pricer, log *slog.Logger, ready func(ctx context.Context) error) http.Handler {
	a := &api{svc: svc, log: log, ready: ready}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("GET /prices", a.handlePrice)
	mux.HandleFunc("GET /prices/top/stocks", a.handleTop(provider.Equity))
	mux.HandleFunc("GET /prices/top/crypto", a.handleTop(provider.Crypto))
	return withJSONHeaders(withGzip(recoverPanic(log, logRequests(log, mux))))
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if a.ready != nil {
		if err := a.ready(r.Context()); err != nil {
			a.log.WarnContext(r.Context(), "readiness check failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *api) handlePrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class, err := provider.ParseAssetClass(q.Get("assetType"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "assetType must be one of the following values: stock, crypto")
		return
	}
	symbol := strings.TrimSpace(q.Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol should not be empty")
		return
	}
	currency := strings.TrimSpace(q.Get("currency"))
	if currency == "" {
		writeError(w, http.StatusBadRequest, "currency should not be empty")
		return
	}

	quote, err := a.svc.GetPrice(r.Context(), class, symbol, currency)
	if err != nil {
		a.fail(w, r, err, notFoundMessage(class, symbol))
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (a *api) handleTop(class provider.AssetClass) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		criterion, err := provider.ParseCriterion(q.Get("sortBy"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "sortBy must be one of the following values: marketCap, volume, priceChange")
			return
		}
		currency := strings.TrimSpace(q.Get("currency"))
		if currency == "" {
			currency = defaultTopCurrency
		}

		items, err := a.svc.GetTopAssets(r.Context(), class, criterion, currency)
		if err != nil {
			a.fail(w, r, err, "")
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, provider.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, provider.ErrInvalidAssetClass), errors.Is(err, provider.ErrInvalidCriterion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, "upstream provider unavailable")
	default:
		a.log.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func notFoundMessage(class provider.AssetClass, symbol string) string {
	if class == provider.Crypto {
		return fmt.Sprintf("Cryptocurrency %s not found", symbol)
	}
	return fmt.Sprintf("Stock %s not found", symbol)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{StatusCode: status, Message: msg, Error: http.StatusText(status)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
