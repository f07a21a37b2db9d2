package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quotechain/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const smitheryBaseURL = "https://smithery.ai/server/@truss44/mcp-crypto-price"

// SmitheryProvider calls the hosted mcp-crypto-price tool. The tool call is a
// plain JSON POST returning recent OHLCV rows; the newest close is the quote.
type SmitheryProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewSmitheryProvider(tracer trace.Tracer) *SmitheryProvider {
	return &SmitheryProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: smitheryBaseURL,
		tracer:  tracer,
	}
}

func (p *SmitheryProvider) Name() string { return "Smithery MCP" }

func (p *SmitheryProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "smithery.fetch-quote")
	defer span.End()

	params := map[string]any{
		"symbol":   instrument,
		"interval": "1h",
		"limit":    1,
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/get_crypto_price", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smithery request for %s: %w", instrument, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("smithery API error %d: %s", resp.StatusCode, string(respBody))
	}

	var rows []struct {
		Timestamp int64   `json:"timestamp"`
		Close     float64 `json:"close"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode smithery response for %s: %w", instrument, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("smithery: empty response for %s", instrument)
	}

	// Rows arrive oldest-first; take the newest.
	last := rows[len(rows)-1]
	if last.Close <= 0 {
		return nil, fmt.Errorf("smithery: no usable close for %s", instrument)
	}

	ts := last.Timestamp
	if ts > 10_000_000_000 { // millisecond timestamps
		ts /= 1000
	}
	fetchedAt := time.Now().UTC()
	if ts > 0 {
		fetchedAt = time.Unix(ts, 0).UTC()
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassCrypto,
		Price:      last.Close,
		FetchedAt:  fetchedAt,
		Source:     p.Name(),
	}, nil
}
