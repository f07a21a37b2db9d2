package provider

import (
	"context"
	"fmt"
	"log"
	"time"

	"quotechain/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// LastQuoteStore looks up the most recent persisted quote for an instrument.
// Returns nil with no error when nothing has been stored yet.
type LastQuoteStore interface {
	LastQuote(ctx context.Context, instrument string) (*domain.Quote, error)
}

// indexBaselines are the static last-resort index levels, used when no
// observation has ever been persisted.
var indexBaselines = map[string]float64{
	"SPX": 6400,
	"NDX": 23200,
	"DJI": 45200,
}

// FallbackModelProvider is the terminal member of the index chain: an
// internal model that serves the last persisted observation, or a static
// baseline when the store is empty. It never performs network I/O, and it
// must never act as a cross-check reference: its output is synthetic and
// would reject live quotes that have simply drifted from the baseline.
type FallbackModelProvider struct {
	store  LastQuoteStore
	tracer trace.Tracer
}

func NewFallbackModelProvider(store LastQuoteStore, tracer trace.Tracer) *FallbackModelProvider {
	return &FallbackModelProvider{store: store, tracer: tracer}
}

func (p *FallbackModelProvider) Name() string { return "internal-model" }

func (p *FallbackModelProvider) FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "fallbackmodel.fetch-quote")
	defer span.End()

	price, err := p.modelPrice(ctx, instrument)
	if err != nil {
		return nil, err
	}

	return &domain.Quote{
		Instrument: instrument,
		Class:      domain.ClassIndex,
		Price:      price,
		FetchedAt:  time.Now().UTC(),
		Source:     p.Name(),
	}, nil
}

func (p *FallbackModelProvider) modelPrice(ctx context.Context, instrument string) (float64, error) {
	if p.store != nil {
		last, err := p.store.LastQuote(ctx, instrument)
		if err != nil {
			log.Printf("fallback model: last quote lookup for %s failed: %v", instrument, err)
		} else if last != nil && last.Price > 0 {
			return last.Price, nil
		}
	}

	baseline, ok := indexBaselines[instrument]
	if !ok {
		return 0, fmt.Errorf("internal model has no baseline for %s", instrument)
	}
	return baseline, nil
}
