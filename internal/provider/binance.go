package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"quotechain/internal/domain"

	"github.com/adshao/go-binance/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BinanceProvider is the primary crypto source. API keys are optional: the
// spot ticker endpoint is public, keys only raise the rate limits.
type BinanceProvider struct {
	client *binance.Client
	tracer trace.Tracer
}

func NewBinanceProvider(apiKey, apiSecret string, tracer trace.Tracer) *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient(apiKey, apiSecret),
		tracer: tracer,
	}
}

func (p *BinanceProvider) Name() string { return "Binance" }

func (p *BinanceProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch-quote")
	defer span.End()
	span.SetAttributes(attribute.String("instrument", instrument))

	prices, err := p.client.NewListPricesService().Symbol(instrument).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance ticker for %s: %w", instrument, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("binance: no ticker for %s", instrument)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse price %q for %s: %w", prices[0].Price, instrument, err)
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassCrypto,
		Price:      price,
		FetchedAt:  time.Now().UTC(),
		Source:     p.Name(),
	}, nil
}
