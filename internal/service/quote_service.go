package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"quotechain/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	quoteCacheTTL = 90 * time.Second

	// Degraded resolutions expire quickly so a provider recovering gets
	// re-checked instead of serving stale unverified data for a full TTL.
	degradedCacheTTL = 20 * time.Second
)

// QuoteResolver walks the ranked provider chain for an instrument.
type QuoteResolver interface {
	Resolve(ctx context.Context, instrument string, class domain.InstrumentClass) (*domain.Resolution, error)
	Chains() map[domain.InstrumentClass][]domain.ProviderSpec
}

type HistoryRepository interface {
	InsertResolution(ctx context.Context, res *domain.Resolution) error
	ListRecent(ctx context.Context, instrument string, limit int) ([]*domain.Quote, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// QuoteService fronts the resolver with a Redis read-through cache and
// persists every resolution that produced a quote.
type QuoteService struct {
	tracer   trace.Tracer
	resolver QuoteResolver
	repo     HistoryRepository
	redis    RedisClient
}

func NewQuoteService(
	tracer trace.Tracer,
	resolver QuoteResolver,
	repo HistoryRepository,
	redisClient RedisClient,
) *QuoteService {
	return &QuoteService{
		tracer:   tracer,
		resolver: resolver,
		repo:     repo,
		redis:    redisClient,
	}
}

// GetQuote returns the current resolution for an instrument. Cached
// resolutions are served as-is; a cache miss walks the provider chain.
func (s *QuoteService) GetQuote(ctx context.Context, instrument string) (*domain.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "quote-service.get-quote")
	defer span.End()

	class, ok := domain.ClassOf(instrument)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownInstrument, instrument)
	}

	if s.redis != nil {
		cached, err := s.getCache(ctx, instrument)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	return s.resolveAndStore(ctx, instrument, class)
}

// GetQuotes resolves every supported instrument, cache-first. Instruments
// whose chains are exhausted are skipped rather than failing the batch.
func (s *QuoteService) GetQuotes(ctx context.Context) ([]*domain.Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "quote-service.get-quotes")
	defer span.End()

	var out []*domain.Resolution
	for _, instrument := range domain.SupportedInstruments() {
		res, err := s.GetQuote(ctx, instrument)
		if err != nil {
			var exhausted *domain.ExhaustedError
			if errors.As(err, &exhausted) {
				log.Printf("all providers exhausted for %s", instrument)
				continue
			}
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// GetHistory returns persisted quotes for an instrument, newest first.
func (s *QuoteService) GetHistory(ctx context.Context, instrument string, limit int) ([]*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "quote-service.get-history")
	defer span.End()

	if _, ok := domain.ClassOf(instrument); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownInstrument, instrument)
	}
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListRecent(ctx, instrument, limit)
}

// Chains exposes the configured provider order per instrument class.
func (s *QuoteService) Chains() map[domain.InstrumentClass][]domain.ProviderSpec {
	return s.resolver.Chains()
}

// RefreshQuote re-resolves an instrument, bypassing the cache. Used by the
// background poller to keep the cache warm.
func (s *QuoteService) RefreshQuote(ctx context.Context, instrument string) error {
	ctx, span := s.tracer.Start(ctx, "quote-service.refresh-quote")
	defer span.End()

	class, ok := domain.ClassOf(instrument)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownInstrument, instrument)
	}

	_, err := s.resolveAndStore(ctx, instrument, class)
	return err
}

func (s *QuoteService) resolveAndStore(ctx context.Context, instrument string, class domain.InstrumentClass) (*domain.Resolution, error) {
	res, err := s.resolver.Resolve(ctx, instrument, class)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.setCache(ctx, instrument, res); err != nil {
			log.Printf("redis cache write error for %s: %v", instrument, err)
		}
	}
	if s.repo != nil {
		if err := s.repo.InsertResolution(ctx, res); err != nil {
			log.Printf("history insert error for %s: %v", instrument, err)
		}
	}

	if res.Status == domain.StatusDegraded {
		log.Printf("serving unverified quote for %s from %s", instrument, res.Quote.Source)
	}
	return res, nil
}

func (s *QuoteService) setCache(ctx context.Context, instrument string, res *domain.Resolution) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	ttl := quoteCacheTTL
	if res.Status == domain.StatusDegraded {
		ttl = degradedCacheTTL
	}
	return s.redis.Set(ctx, "quote:"+instrument, data, ttl).Err()
}

func (s *QuoteService) getCache(ctx context.Context, instrument string) (*domain.Resolution, error) {
	data, err := s.redis.Get(ctx, "quote:"+instrument).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res domain.Resolution
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
