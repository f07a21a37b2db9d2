package resolver

import (
	"context"
	"fmt"
	"time"

	"quotechain/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Provider is one member of a ranked fallback chain.
type Provider interface {
	Name() string
	FetchQuote(ctx context.Context, instrument string) (*domain.Quote, error)
}

// ReferenceProvider supplies a secondary price used only to sanity-check
// another provider's result.
type ReferenceProvider interface {
	Name() string
	ReferencePrice(ctx context.Context, instrument string) (float64, error)
}

// ChainEntry pairs a ProviderSpec with its implementation. MissingEnv is set
// at construction time when a required credential is absent; such entries are
// skipped (recorded as config_missing attempts), never retried.
type ChainEntry struct {
	Spec       domain.ProviderSpec
	Provider   Provider
	MissingEnv string
}

// Options holds the tunables the source material leaves open. Defaults:
// 1% tolerance, 2 attempts per provider, 10s per-provider timeout.
type Options struct {
	TolerancePct   float64
	Attempts       int
	DefaultTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.TolerancePct <= 0 {
		o.TolerancePct = 1.0
	}
	if o.Attempts <= 0 {
		o.Attempts = 2
	}
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = 10 * time.Second
	}
	return o
}

// Resolver tries providers in ascending rank order until one yields a
// validated quote. Chains are immutable after construction, so a single
// Resolver is safe for concurrent use.
type Resolver struct {
	tracer trace.Tracer
	chains map[domain.InstrumentClass][]ChainEntry
	refs   map[domain.InstrumentClass]ReferenceProvider
	rule   ValidationRule
	opts   Options
}

func New(
	tracer trace.Tracer,
	chains map[domain.InstrumentClass][]ChainEntry,
	refs map[domain.InstrumentClass]ReferenceProvider,
	opts Options,
) (*Resolver, error) {
	for class, entries := range chains {
		specs := make([]domain.ProviderSpec, 0, len(entries))
		for _, e := range entries {
			specs = append(specs, e.Spec)
		}
		if err := domain.ValidateChain(class, specs); err != nil {
			return nil, err
		}
	}

	opts = opts.withDefaults()
	return &Resolver{
		tracer: tracer,
		chains: chains,
		refs:   refs,
		rule:   ValidationRule{TolerancePct: opts.TolerancePct},
		opts:   opts,
	}, nil
}

// Chains returns a copy of the configured specs per class, for introspection.
func (r *Resolver) Chains() map[domain.InstrumentClass][]domain.ProviderSpec {
	out := make(map[domain.InstrumentClass][]domain.ProviderSpec, len(r.chains))
	for class, entries := range r.chains {
		specs := make([]domain.ProviderSpec, 0, len(entries))
		for _, e := range entries {
			specs = append(specs, e.Spec)
		}
		out[class] = specs
	}
	return out
}

// Resolve returns the best-available current quote for an instrument.
//
// Providers are tried one at a time in rank order: the ranking expresses a
// quality preference, not a race, so nothing runs in parallel. A provider
// that fetches and validates short-circuits the chain. A provider that
// fetches but fails validation is kept as a candidate; if every remaining
// provider fails outright the candidate is returned with status degraded.
// When no provider produces anything, the error is a *domain.ExhaustedError
// naming every provider tried. Total latency is bounded: each provider costs
// at most attempts x timeout for fetching plus one reference call of up to
// the default timeout when its quote is cross-checked.
func (r *Resolver) Resolve(ctx context.Context, instrument string, class domain.InstrumentClass) (*domain.Resolution, error) {
	ctx, span := r.tracer.Start(ctx, "resolver.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("instrument", instrument),
		attribute.String("class", string(class)),
	)

	if instrument == "" {
		return nil, fmt.Errorf("%w: empty instrument", domain.ErrUnknownInstrument)
	}
	chain, ok := r.chains[class]
	if !ok || len(chain) == 0 {
		return nil, &domain.ExhaustedError{Instrument: instrument}
	}

	var attempts []domain.Attempt
	var candidate *domain.Quote

	for _, entry := range chain {
		if entry.MissingEnv != "" {
			attempts = append(attempts, domain.Attempt{
				Provider: entry.Spec.Name,
				Outcome:  domain.OutcomeConfigMissing,
				Reason:   entry.MissingEnv + " not set",
			})
			continue
		}

		quote, err := r.fetch(ctx, entry, instrument)
		if err != nil {
			attempts = append(attempts, domain.Attempt{
				Provider: entry.Spec.Name,
				Outcome:  domain.OutcomeFetchFailed,
				Reason:   err.Error(),
			})
			continue
		}

		if err := r.validate(ctx, class, entry, quote); err != nil {
			attempts = append(attempts, domain.Attempt{
				Provider: entry.Spec.Name,
				Outcome:  domain.OutcomeValidationFailed,
				Reason:   err.Error(),
			})
			// Keep the first fetched-but-unvalidated result as the
			// fallback of last resort.
			if candidate == nil {
				candidate = quote
			}
			continue
		}

		attempts = append(attempts, domain.Attempt{
			Provider: entry.Spec.Name,
			Outcome:  domain.OutcomeValidated,
		})
		span.SetAttributes(attribute.String("resolved.source", quote.Source))
		return &domain.Resolution{
			Quote:    quote,
			Status:   domain.StatusSucceeded,
			Attempts: attempts,
		}, nil
	}

	if candidate != nil {
		span.SetAttributes(attribute.String("resolved.source", candidate.Source))
		return &domain.Resolution{
			Quote:    candidate,
			Status:   domain.StatusDegraded,
			Attempts: attempts,
		}, nil
	}

	return nil, &domain.ExhaustedError{Instrument: instrument, Attempts: attempts}
}

// fetch calls one provider with a bounded timeout, retrying a small fixed
// number of times so total latency stays bounded.
func (r *Resolver) fetch(ctx context.Context, entry ChainEntry, instrument string) (*domain.Quote, error) {
	timeout := entry.Spec.Timeout
	if timeout <= 0 {
		timeout = r.opts.DefaultTimeout
	}

	var lastErr error
	for i := 0; i < r.opts.Attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tryCtx, cancel := context.WithTimeout(ctx, timeout)
		quote, err := entry.Provider.FetchQuote(tryCtx, instrument)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if quote == nil || quote.Price <= 0 {
			lastErr = fmt.Errorf("%w: %s returned no usable price", domain.ErrProviderUnavailable, entry.Spec.Name)
			continue
		}
		return quote, nil
	}
	return nil, lastErr
}

// validate cross-checks a fetched quote against the class reference provider.
// When the reference is the source itself, or no reference is configured, or
// the reference cannot be reached, the static plausibility range applies.
func (r *Resolver) validate(ctx context.Context, class domain.InstrumentClass, entry ChainEntry, quote *domain.Quote) error {
	ref, ok := r.refs[class]
	if !ok || ref.Name() == entry.Spec.Name {
		return r.rule.CheckRange(quote)
	}

	refCtx, cancel := context.WithTimeout(ctx, r.opts.DefaultTimeout)
	refPrice, err := ref.ReferencePrice(refCtx, quote.Instrument)
	cancel()
	if err != nil || refPrice <= 0 {
		return r.rule.CheckRange(quote)
	}

	return r.rule.Check(quote, refPrice)
}
