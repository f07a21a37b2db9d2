package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quotechain/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const cryptoAPIsBaseURL = "https://rest.cryptoapis.io/v2"

// CryptoAPIsProvider fetches exchange rates from the Crypto APIs market-data
// service. Requires CRYPTOAPIS_KEY.
type CryptoAPIsProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewCryptoAPIsProvider(apiKey string, tracer trace.Tracer) *CryptoAPIsProvider {
	return &CryptoAPIsProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: cryptoAPIsBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

func (p *CryptoAPIsProvider) Name() string { return "Crypto APIs" }

func (p *CryptoAPIsProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "cryptoapis.fetch-quote")
	defer span.End()

	base, quote, err := domain.SplitPair(instrument)
	if err != nil {
		return nil, fmt.Errorf("cryptoapis: %w", err)
	}

	u := fmt.Sprintf("%s/market-data/exchange-rates/by-asset-symbols?%s", p.baseURL, url.Values{
		"assetPairFrom": {base},
		"assetPairTo":   {quote},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cryptoapis request for %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cryptoapis API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			Item struct {
				Rate                 string `json:"rate"`
				CalculationTimestamp int64  `json:"calculationTimestamp"`
			} `json:"item"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cryptoapis response for %s: %w", instrument, err)
	}

	rate, err := strconv.ParseFloat(payload.Data.Item.Rate, 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("cryptoapis: no usable rate for %s (%q)", instrument, payload.Data.Item.Rate)
	}

	fetchedAt := time.Now().UTC()
	if ts := payload.Data.Item.CalculationTimestamp; ts > 0 {
		fetchedAt = time.Unix(ts, 0).UTC()
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassCrypto,
		Price:      rate,
		FetchedAt:  fetchedAt,
		Source:     p.Name(),
	}, nil
}
