package domain

import (
	"fmt"
	"time"
)

// ProviderCapability distinguishes chain members that serve quotes from
// providers used only as a cross-check reference.
type ProviderCapability string

const (
	CapabilityPriceFeed      ProviderCapability = "price-feed"
	CapabilityValidationOnly ProviderCapability = "validation-only"
)

// ProviderSpec identifies one external data provider in a chain.
// Specs are built once at startup and never mutated afterwards.
type ProviderSpec struct {
	Name       string             `json:"name"`
	Rank       int                `json:"rank"`
	Capability ProviderCapability `json:"capability"`
	Timeout    time.Duration      `json:"timeout"`
	// CredentialEnvs names the environment variables the provider needs.
	// Empty means the provider works unauthenticated.
	CredentialEnvs []string `json:"credential_envs,omitempty"`
}

// ValidateChain checks the invariants of a per-class provider chain:
// non-empty, ranks strictly ordered, no duplicate names.
func ValidateChain(class InstrumentClass, specs []ProviderSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("provider chain for class %s is empty", class)
	}
	seenRank := make(map[int]string, len(specs))
	seenName := make(map[string]bool, len(specs))
	prev := -1
	for _, s := range specs {
		if s.Name == "" {
			return fmt.Errorf("provider chain for class %s has an unnamed entry", class)
		}
		if seenName[s.Name] {
			return fmt.Errorf("provider %s appears twice in class %s chain", s.Name, class)
		}
		seenName[s.Name] = true
		if other, dup := seenRank[s.Rank]; dup {
			return fmt.Errorf("providers %s and %s share rank %d in class %s chain", other, s.Name, s.Rank, class)
		}
		seenRank[s.Rank] = s.Name
		if s.Rank <= prev {
			return fmt.Errorf("provider chain for class %s is not ordered by ascending rank", class)
		}
		prev = s.Rank
	}
	return nil
}
