package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quotechain/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches spot prices from the CoinGecko free API. It is
// both the last member of the crypto chain and the cross-check reference for
// the other crypto providers.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a new provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds).
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

func (p *CoinGeckoProvider) Name() string { return "CoinGecko" }

// FetchQuote fetches the current USD price for a crypto pair.
func (p *CoinGeckoProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-quote")
	defer span.End()

	price, err := p.fetchUSDPrice(ctx, instrument)
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassCrypto,
		Price:      price,
		FetchedAt:  time.Now().UTC(),
		Source:     p.Name(),
	}, nil
}

// ReferencePrice returns a USD price used to sanity-check other providers.
func (p *CoinGeckoProvider) ReferencePrice(ctx context.Context, instrument string) (float64, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.reference-price")
	defer span.End()

	return p.fetchUSDPrice(ctx, instrument)
}

func (p *CoinGeckoProvider) fetchUSDPrice(ctx context.Context, instrument string) (float64, error) {
	base, _, err := domain.SplitPair(instrument)
	if err != nil {
		return 0, fmt.Errorf("coingecko: %w", err)
	}
	slug, ok := domain.CryptoSlug[base]
	if !ok {
		return 0, fmt.Errorf("coingecko: unsupported asset %s", base)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", p.baseURL, slug)
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch price for %s: %w", instrument, err)
	}

	// Response shape: {"bitcoin": {"usd": 65010.12}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("parse price for %s: %w", instrument, err)
	}

	entry, ok := raw[slug]
	if !ok {
		return 0, fmt.Errorf("coingecko: no data for %s", slug)
	}
	price, ok := entry["usd"]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("coingecko: no usd price for %s", slug)
	}
	return price, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
