package advisor

import (
	"strings"

	"quotechain/internal/domain"
)

// ExtractInstruments scans the user message for mentions of supported
// instruments. Bare crypto bases like "BTC" map to their USDT pair.
// Returns deduplicated instruments in mention order.
func ExtractInstruments(text string) []string {
	upper := strings.ToUpper(text)
	words := strings.FieldsFunc(upper, func(r rune) bool {
		return !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})

	seen := make(map[string]bool)
	var result []string
	add := func(instrument string) {
		if !seen[instrument] {
			seen[instrument] = true
			result = append(result, instrument)
		}
	}

	for _, w := range words {
		if _, ok := domain.ClassOf(w); ok {
			add(w)
			continue
		}
		if _, ok := domain.CryptoSlug[w]; ok {
			add(w + "USDT")
		}
	}
	return result
}
