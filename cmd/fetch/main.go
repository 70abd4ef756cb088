package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"assetprice/internal/app"
	"assetprice/internal/config"
	"assetprice/internal/logging"
	"assetprice/internal/provider"
)

func main() {
	var (
		assetType  string
		symbol     string
		currency   string
		top        bool
		sortBy     string
		configPath string
		timeout    int
	)
	flag.StringVar(&assetType, "type", getenv("ASSET_TYPE", "stock"), "asset type: stock or crypto")
	flag.StringVar(&symbol, "symbol", getenv("SYMBOL", ""), "ticker (AAPL) or coin id (bitcoin)")
	flag.StringVar(&currency, "currency", getenv("CURRENCY", "USD"), "quote currency")
	flag.BoolVar(&top, "top", false, "print the top 10 list instead of one quote")
	flag.StringVar(&sortBy, "sort", getenv("SORT_BY", "marketCap"), "top list criterion: marketCap, volume or priceChange")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "overall timeout seconds")
	flag.Parse()

	if err := run(assetType, symbol, currency, top, sortBy, configPath, time.Duration(timeout)*time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(1)
	}
}

func run(assetType, symbol, currency string, top bool, sortBy, configPath string, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.NewTo(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	class, err := provider.ParseAssetClass(assetType)
	if err != nil {
		return err
	}
	svc, err := app.NewService(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var out any
	if top {
		criterion, err := provider.ParseCriterion(sortBy)
		if err != nil {
			return err
		}
		out, err = svc.GetTopAssets(ctx, class, criterion, currency)
		if err != nil {
			return err
		}
	} else {
		if symbol == "" {
			return fmt.Errorf("-symbol is required")
		}
		out, err = svc.GetPrice(ctx, class, symbol, currency)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
