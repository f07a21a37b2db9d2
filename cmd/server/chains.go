package main

import (
	"fmt"
	"time"

	"quotechain/internal/config"
	"quotechain/internal/domain"
	"quotechain/internal/provider"
	"quotechain/internal/resolver"

	"go.opentelemetry.io/otel/trace"
)

// defaultCryptoOrder and defaultIndexOrder are the built-in chain rankings,
// best source first. CRYPTO_PROVIDERS / INDEX_PROVIDERS reorder or shrink
// them, but cannot introduce unknown provider names.
var (
	defaultCryptoOrder = []string{"Binance", "Crypto APIs", "Smithery MCP", "CoinCap", "CoinGecko"}
	defaultIndexOrder  = []string{"Yahoo Finance", "Alpha Vantage", "internal-model"}
)

// buildResolver wires every provider, applies any chain-order override from
// config, and hands the chains to the resolver. The CoinGecko provider
// doubles as the crypto cross-check reference.
func buildResolver(cfg *config.Config, tracer trace.Tracer, store provider.LastQuoteStore) (*resolver.Resolver, error) {
	coingecko := provider.NewCoinGeckoProvider(tracer)
	model := provider.NewFallbackModelProvider(store, tracer)

	timeout := time.Duration(cfg.ProviderTimeoutSecs) * time.Second

	cryptoEntries := map[string]resolver.ChainEntry{
		"Binance": {
			Spec:     domain.ProviderSpec{Name: "Binance", Capability: domain.CapabilityPriceFeed, Timeout: timeout},
			Provider: provider.NewBinanceProvider(cfg.BinanceAPIKey, cfg.BinanceAPISecret, tracer),
		},
		"Crypto APIs": {
			Spec: domain.ProviderSpec{
				Name:           "Crypto APIs",
				Capability:     domain.CapabilityPriceFeed,
				Timeout:        timeout,
				CredentialEnvs: []string{"CRYPTOAPIS_KEY"},
			},
			Provider:   provider.NewCryptoAPIsProvider(cfg.CryptoAPIsKey, tracer),
			MissingEnv: missingEnv(cfg.CryptoAPIsKey, "CRYPTOAPIS_KEY"),
		},
		"Smithery MCP": {
			Spec:     domain.ProviderSpec{Name: "Smithery MCP", Capability: domain.CapabilityPriceFeed, Timeout: timeout},
			Provider: provider.NewSmitheryProvider(tracer),
		},
		"CoinCap": {
			Spec:     domain.ProviderSpec{Name: "CoinCap", Capability: domain.CapabilityPriceFeed, Timeout: timeout},
			Provider: provider.NewCoinCapProvider(tracer),
		},
		"CoinGecko": {
			Spec:     domain.ProviderSpec{Name: "CoinGecko", Capability: domain.CapabilityPriceFeed, Timeout: timeout},
			Provider: coingecko,
		},
	}

	indexEntries := map[string]resolver.ChainEntry{
		"Yahoo Finance": {
			Spec:     domain.ProviderSpec{Name: "Yahoo Finance", Capability: domain.CapabilityPriceFeed, Timeout: timeout},
			Provider: provider.NewYahooProvider(tracer),
		},
		"Alpha Vantage": {
			Spec: domain.ProviderSpec{
				Name:           "Alpha Vantage",
				Capability:     domain.CapabilityPriceFeed,
				Timeout:        timeout,
				CredentialEnvs: []string{"ALPHAVANTAGE_KEY"},
			},
			Provider:   provider.NewAlphaVantageProvider(cfg.AlphaVantageKey, tracer),
			MissingEnv: missingEnv(cfg.AlphaVantageKey, "ALPHAVANTAGE_KEY"),
		},
		"internal-model": {
			Spec:     domain.ProviderSpec{Name: "internal-model", Capability: domain.CapabilityPriceFeed, Timeout: timeout},
			Provider: model,
		},
	}

	cryptoChain, err := orderChain(domain.ClassCrypto, cryptoEntries, cfg.CryptoProviders, defaultCryptoOrder)
	if err != nil {
		return nil, err
	}
	indexChain, err := orderChain(domain.ClassIndex, indexEntries, cfg.IndexProviders, defaultIndexOrder)
	if err != nil {
		return nil, err
	}

	chains := map[domain.InstrumentClass][]resolver.ChainEntry{
		domain.ClassCrypto: cryptoChain,
		domain.ClassIndex:  indexChain,
	}
	return resolver.New(tracer, chains, referenceProviders(coingecko), resolver.Options{
		TolerancePct:   cfg.ValidationTolerancePct,
		Attempts:       cfg.ProviderAttempts,
		DefaultTimeout: timeout,
	})
}

// referenceProviders wires the cross-check references. Only crypto has an
// independent reference. The index chain gets none: its only candidate is
// the internal model, which is itself a chain member and must never vouch
// against live quotes, so index results validate by plausibility range.
func referenceProviders(coingecko *provider.CoinGeckoProvider) map[domain.InstrumentClass]resolver.ReferenceProvider {
	return map[domain.InstrumentClass]resolver.ReferenceProvider{
		domain.ClassCrypto: coingecko,
	}
}

func orderChain(class domain.InstrumentClass, entries map[string]resolver.ChainEntry, override, defaultOrder []string) ([]resolver.ChainEntry, error) {
	order := defaultOrder
	if len(override) > 0 {
		order = override
	}

	chain := make([]resolver.ChainEntry, 0, len(order))
	for i, name := range order {
		entry, ok := entries[name]
		if !ok {
			return nil, fmt.Errorf("unknown %s provider in chain override: %q", class, name)
		}
		entry.Spec.Rank = i + 1
		chain = append(chain, entry)
	}
	return chain, nil
}

func missingEnv(value, env string) string {
	if value == "" {
		return env
	}
	return ""
}
