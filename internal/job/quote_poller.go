package job

import (
	"context"
	"log"
	"time"

	"quotechain/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// QuotePoller keeps the quote cache warm by re-resolving instruments in the
// background so interactive reads rarely pay the full chain walk.
type QuotePoller struct {
	tracer       trace.Tracer
	quotes       QuoteRefresher
	pollInterval time.Duration
}

type QuoteRefresher interface {
	RefreshQuote(ctx context.Context, instrument string) error
}

func NewQuotePoller(tracer trace.Tracer, quotes QuoteRefresher, pollIntervalSecs int) *QuotePoller {
	return &QuotePoller{
		tracer:       tracer,
		quotes:       quotes,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start launches the polling goroutines. Blocks until ctx is cancelled.
func (p *QuotePoller) Start(ctx context.Context) {
	log.Println("Quote poller starting...")

	// Crypto trades continuously; refresh the whole set every interval.
	go p.pollLoop(ctx, "crypto-quotes", p.pollInterval, func(ctx context.Context) error {
		p.refreshBatch(ctx, domain.SupportedCrypto)
		return nil
	})

	// Index levels move slowly outside market hours; a longer interval
	// stays well inside Yahoo's and Alpha Vantage's rate limits.
	go p.pollLoop(ctx, "index-quotes", 5*p.pollInterval, func(ctx context.Context) error {
		p.refreshBatch(ctx, domain.SupportedIndices)
		return nil
	})

	<-ctx.Done()
	log.Println("Quote poller stopped")
}

func (p *QuotePoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}

func (p *QuotePoller) refreshBatch(ctx context.Context, instruments []string) {
	for _, instrument := range instruments {
		if ctx.Err() != nil {
			return
		}
		if err := p.quotes.RefreshQuote(ctx, instrument); err != nil {
			log.Printf("quote refresh error for %s: %v", instrument, err)
		}
	}
}
