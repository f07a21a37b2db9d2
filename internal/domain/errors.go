package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderUnavailable marks a transport or timeout failure for one
	// provider. It never escapes a resolve call.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrValidationFailed marks a fetched value rejected by cross-validation.
	ErrValidationFailed = errors.New("validation failed")

	// ErrConfigMissing marks a provider skipped because a required
	// credential environment variable is absent.
	ErrConfigMissing = errors.New("provider configuration missing")

	// ErrUnknownInstrument marks a resolve request for an instrument
	// outside the supported registry.
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// ExhaustedError is returned when every configured provider fails outright,
// naming each provider tried and its individual failure reason.
type ExhaustedError struct {
	Instrument string
	Attempts   []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Reason != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Reason))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Outcome))
		}
	}
	return fmt.Sprintf("all sources exhausted for %s [%s]", e.Instrument, strings.Join(parts, "; "))
}

// ProviderNames lists the providers tried, in attempt order.
func (e *ExhaustedError) ProviderNames() []string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Provider)
	}
	return names
}
