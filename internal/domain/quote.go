package domain

import "time"

// Quote is a single fetched price for an instrument. Immutable once returned.
type Quote struct {
	Instrument string          `json:"instrument"`
	Class      InstrumentClass `json:"class"`
	Price      float64         `json:"price"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Source     string          `json:"source"`
}

// ResolutionStatus is the terminal state of one resolve call.
type ResolutionStatus string

const (
	// StatusSucceeded means the quote fetched and passed cross-validation.
	StatusSucceeded ResolutionStatus = "succeeded"
	// StatusDegraded means the quote fetched but could not be validated.
	// Consumers should treat it as lower-confidence input.
	StatusDegraded ResolutionStatus = "degraded"
)

// AttemptOutcome classifies what happened with one provider in the chain.
type AttemptOutcome string

const (
	OutcomeValidated        AttemptOutcome = "validated"
	OutcomeFetchFailed      AttemptOutcome = "fetch_failed"
	OutcomeValidationFailed AttemptOutcome = "validation_failed"
	OutcomeConfigMissing    AttemptOutcome = "config_missing"
)

// Attempt records one provider try within a resolve call.
type Attempt struct {
	Provider string         `json:"provider"`
	Outcome  AttemptOutcome `json:"outcome"`
	Reason   string         `json:"reason,omitempty"`
}

// Resolution is the terminal result of resolving one instrument.
type Resolution struct {
	Quote    *Quote           `json:"quote"`
	Status   ResolutionStatus `json:"status"`
	Attempts []Attempt        `json:"attempts,omitempty"`
}

// Unverified reports whether the resolution carries a quote that was never
// cross-validated.
func (r *Resolution) Unverified() bool {
	return r.Status == StatusDegraded
}
