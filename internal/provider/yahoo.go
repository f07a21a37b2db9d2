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

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider is the primary index source, using the public chart endpoint.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewYahooProvider(tracer trace.Tracer) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: yahooBaseURL,
		tracer:  tracer,
	}
}

func (p *YahooProvider) Name() string { return "Yahoo Finance" }

func (p *YahooProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-quote")
	defer span.End()

	symbol, ok := domain.YahooSymbol[instrument]
	if !ok {
		return nil, fmt.Errorf("yahoo: unsupported index %s", instrument)
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", p.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "quotechain/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo request for %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					RegularMarketTime  int64   `json:"regularMarketTime"`
				} `json:"meta"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode yahoo response for %s: %w", instrument, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s %s",
			instrument, payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: empty chart result for %s", instrument)
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("yahoo: no usable price for %s", instrument)
	}

	fetchedAt := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		fetchedAt = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassIndex,
		Price:      meta.RegularMarketPrice,
		FetchedAt:  fetchedAt,
		Source:     p.Name(),
	}, nil
}
