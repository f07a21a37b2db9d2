package main

import (
	"testing"

	"quotechain/internal/config"
	"quotechain/internal/domain"
	"quotechain/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

var chainsTestTracer = trace.NewNoopTracerProvider().Tracer("test")

func testConfig() *config.Config {
	return &config.Config{
		ProviderTimeoutSecs:    10,
		ProviderAttempts:       2,
		ValidationTolerancePct: 1.0,
	}
}

func TestBuildResolverDefaultChains(t *testing.T) {
	t.Parallel()

	r, err := buildResolver(testConfig(), chainsTestTracer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chains := r.Chains()
	crypto := chains[domain.ClassCrypto]
	if len(crypto) != len(defaultCryptoOrder) {
		t.Fatalf("expected %d crypto providers, got %d", len(defaultCryptoOrder), len(crypto))
	}
	for i, spec := range crypto {
		if spec.Name != defaultCryptoOrder[i] {
			t.Fatalf("crypto rank %d: expected %s, got %s", i+1, defaultCryptoOrder[i], spec.Name)
		}
		if spec.Rank != i+1 {
			t.Fatalf("expected rank %d for %s, got %d", i+1, spec.Name, spec.Rank)
		}
	}

	index := chains[domain.ClassIndex]
	if len(index) != len(defaultIndexOrder) {
		t.Fatalf("expected %d index providers, got %d", len(defaultIndexOrder), len(index))
	}
	for i, spec := range index {
		if spec.Name != defaultIndexOrder[i] {
			t.Fatalf("index rank %d: expected %s, got %s", i+1, defaultIndexOrder[i], spec.Name)
		}
	}
}

func TestBuildResolverMarksMissingCredentials(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	r, err := buildResolver(cfg, chainsTestTracer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, spec := range r.Chains()[domain.ClassCrypto] {
		if spec.Name == "Crypto APIs" && len(spec.CredentialEnvs) == 0 {
			t.Fatal("expected Crypto APIs to declare its credential env")
		}
	}
}

func TestBuildResolverHonorsChainOverride(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CryptoProviders = []string{"CoinGecko", "Binance"}

	r, err := buildResolver(cfg, chainsTestTracer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	crypto := r.Chains()[domain.ClassCrypto]
	if len(crypto) != 2 || crypto[0].Name != "CoinGecko" || crypto[1].Name != "Binance" {
		t.Fatalf("override not applied: %+v", crypto)
	}
}

func TestBuildResolverRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.IndexProviders = []string{"Bloomberg Terminal"}

	if _, err := buildResolver(cfg, chainsTestTracer, nil); err == nil {
		t.Fatal("expected error for unknown provider name")
	}
}

func TestReferenceProvidersCryptoOnly(t *testing.T) {
	t.Parallel()

	refs := referenceProviders(provider.NewCoinGeckoProvider(chainsTestTracer))
	if len(refs) != 1 {
		t.Fatalf("expected exactly one reference, got %d", len(refs))
	}
	ref, ok := refs[domain.ClassCrypto]
	if !ok || ref.Name() != "CoinGecko" {
		t.Fatalf("expected CoinGecko as the crypto reference, got %v", refs)
	}
	// The index chain must never get a reference: the internal model is a
	// chain member and would reject live quotes against its own baseline.
	if _, ok := refs[domain.ClassIndex]; ok {
		t.Fatal("index class must not have a cross-check reference")
	}
}
