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

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageProvider is the index backup source. Requires ALPHAVANTAGE_KEY.
type AlphaVantageProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *RateLimiter
	tracer  trace.Tracer
}

func NewAlphaVantageProvider(apiKey string, tracer trace.Tracer) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: alphaVantageBaseURL,
		apiKey:  apiKey,
		// Free tier allows 5 requests per minute.
		limiter: NewRateLimiter(5, 12*time.Second),
		tracer:  tracer,
	}
}

func (p *AlphaVantageProvider) Name() string { return "Alpha Vantage" }

func (p *AlphaVantageProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "alphavantage.fetch-quote")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("alphavantage rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/query?%s", p.baseURL, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {instrument},
		"apikey":   {p.apiKey},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request for %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("alphavantage API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		GlobalQuote struct {
			Price string `json:"05. price"`
		} `json:"Global Quote"`
		Note string `json:"Note"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode alphavantage response for %s: %w", instrument, err)
	}
	if payload.Note != "" {
		// Alpha Vantage reports rate limiting as a 200 with a Note field.
		return nil, fmt.Errorf("alphavantage rate limited: %s", payload.Note)
	}

	price, err := strconv.ParseFloat(payload.GlobalQuote.Price, 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("alphavantage: no usable price for %s (%q)", instrument, payload.GlobalQuote.Price)
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassIndex,
		Price:      price,
		FetchedAt:  time.Now().UTC(),
		Source:     p.Name(),
	}, nil
}
