package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"quotechain/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coincapBaseURL = "https://api.coincap.io/v2"

// CoinCapProvider fetches USD asset prices from the public CoinCap API.
type CoinCapProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewCoinCapProvider(tracer trace.Tracer) *CoinCapProvider {
	return &CoinCapProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: coincapBaseURL,
		tracer:  tracer,
	}
}

func (p *CoinCapProvider) Name() string { return "CoinCap" }

func (p *CoinCapProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "coincap.fetch-quote")
	defer span.End()

	base, _, err := domain.SplitPair(instrument)
	if err != nil {
		return nil, fmt.Errorf("coincap: %w", err)
	}
	slug, ok := domain.CryptoSlug[base]
	if !ok {
		return nil, fmt.Errorf("coincap: unsupported asset %s", base)
	}

	url := fmt.Sprintf("%s/assets/%s", p.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coincap request for %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coincap API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			PriceUSD string `json:"priceUsd"`
		} `json:"data"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode coincap response for %s: %w", instrument, err)
	}

	price, err := strconv.ParseFloat(payload.Data.PriceUSD, 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("coincap: no usable price for %s (%q)", instrument, payload.Data.PriceUSD)
	}

	fetchedAt := time.Now().UTC()
	if payload.Timestamp > 0 {
		fetchedAt = time.UnixMilli(payload.Timestamp).UTC()
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassCrypto,
		Price:      price,
		FetchedAt:  fetchedAt,
		Source:     p.Name(),
	}, nil
}
