package resolver

import (
	"fmt"
	"math"

	"quotechain/internal/domain"
)

// ValidationRule is the predicate deciding whether a fetched quote agrees
// with a reference value.
type ValidationRule struct {
	// TolerancePct is the maximum allowed deviation between quote and
	// reference, in percent of the reference.
	TolerancePct float64
}

// Check compares a quote against a reference price from a secondary provider.
func (v ValidationRule) Check(q *domain.Quote, reference float64) error {
	if reference <= 0 {
		return fmt.Errorf("%w: non-positive reference price", domain.ErrValidationFailed)
	}
	deviation := math.Abs(q.Price-reference) / reference * 100
	if deviation > v.TolerancePct {
		return fmt.Errorf("%w: price %.4f deviates %.2f%% from reference %.4f (tolerance %.2f%%)",
			domain.ErrValidationFailed, q.Price, deviation, reference, v.TolerancePct)
	}
	return nil
}

// plausibleRanges bounds the believable price per base asset or index,
// used when no cross-check reference is reachable. Deliberately wide: the
// point is catching unit errors (cents vs dollars), not market moves.
var plausibleRanges = map[string][2]float64{
	"BTC":  {20000, 200000},
	"ETH":  {800, 15000},
	"SOL":  {30, 800},
	"BNB":  {150, 2000},
	"XRP":  {0.1, 5.0},
	"ADA":  {0.1, 3.0},
	"DOGE": {0.02, 1.0},
	"SHIB": {0.000001, 0.001},
	"DOT":  {5, 100},
	"AVAX": {10, 150},
	"LINK": {5, 100},
	"SPX":  {3000, 9000},
	"NDX":  {10000, 30000},
	"DJI":  {25000, 60000},
}

// CheckRange validates a quote against the static plausibility table. An
// instrument without a table entry passes as long as its price is positive.
func (v ValidationRule) CheckRange(q *domain.Quote) error {
	if q.Price <= 0 {
		return fmt.Errorf("%w: non-positive price %.4f", domain.ErrValidationFailed, q.Price)
	}

	key := q.Instrument
	if q.Class == domain.ClassCrypto {
		base, _, err := domain.SplitPair(q.Instrument)
		if err == nil {
			key = base
		}
	}

	bounds, ok := plausibleRanges[key]
	if !ok {
		return nil
	}
	if q.Price < bounds[0] || q.Price > bounds[1] {
		return fmt.Errorf("%w: price %.4f outside plausible range [%.4f, %.4f] for %s",
			domain.ErrValidationFailed, q.Price, bounds[0], bounds[1], key)
	}
	return nil
}
