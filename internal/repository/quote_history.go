package repository

import (
	"context"

	"quotechain/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createQuotesTable = `
CREATE TABLE IF NOT EXISTS quotes (
    id          BIGSERIAL   PRIMARY KEY,
    instrument  TEXT        NOT NULL,
    class       TEXT        NOT NULL,
    price       NUMERIC     NOT NULL,
    source      TEXT        NOT NULL,
    status      TEXT        NOT NULL,
    fetched_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quotes_instrument_time
    ON quotes (instrument, fetched_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type QuoteHistoryRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewQuoteHistoryRepository(pool PgxPool, tracer trace.Tracer) *QuoteHistoryRepository {
	return &QuoteHistoryRepository{pool: pool, tracer: tracer}
}

func (r *QuoteHistoryRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "quote-history-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createQuotesTable)
	return err
}

// InsertResolution records a resolved quote along with the confidence it
// resolved at. Exhausted resolutions carry no quote and are not persisted.
func (r *QuoteHistoryRepository) InsertResolution(ctx context.Context, res *domain.Resolution) error {
	if res == nil || res.Quote == nil {
		return nil
	}

	_, span := r.tracer.Start(ctx, "quote-history-repo.insert-resolution")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO quotes (instrument, class, price, source, status, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		res.Quote.Instrument, string(res.Quote.Class), res.Quote.Price,
		res.Quote.Source, string(res.Status), res.Quote.FetchedAt,
	)
	return err
}

// ListRecent returns up to limit persisted quotes for an instrument,
// newest first.
func (r *QuoteHistoryRepository) ListRecent(ctx context.Context, instrument string, limit int) ([]*domain.Quote, error) {
	_, span := r.tracer.Start(ctx, "quote-history-repo.list-recent")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT instrument, class, price, source, fetched_at
		 FROM quotes
		 WHERE instrument = $1
		 ORDER BY fetched_at DESC
		 LIMIT $2`,
		instrument, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		q := &domain.Quote{}
		var class string
		if err := rows.Scan(&q.Instrument, &class, &q.Price, &q.Source, &q.FetchedAt); err != nil {
			return nil, err
		}
		q.Class = domain.InstrumentClass(class)
		q.FetchedAt = q.FetchedAt.UTC()
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// LastQuote returns the most recent validated quote for an instrument, or
// nil when nothing has been stored. Degraded rows are skipped so the
// fallback model never seeds itself from unverified data.
func (r *QuoteHistoryRepository) LastQuote(ctx context.Context, instrument string) (*domain.Quote, error) {
	_, span := r.tracer.Start(ctx, "quote-history-repo.last-quote")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT instrument, class, price, source, fetched_at
		 FROM quotes
		 WHERE instrument = $1 AND status = $2
		 ORDER BY fetched_at DESC
		 LIMIT 1`,
		instrument, string(domain.StatusSucceeded),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	q := &domain.Quote{}
	var class string
	if err := rows.Scan(&q.Instrument, &class, &q.Price, &q.Source, &q.FetchedAt); err != nil {
		return nil, err
	}
	q.Class = domain.InstrumentClass(class)
	q.FetchedAt = q.FetchedAt.UTC()
	return q, rows.Err()
}
