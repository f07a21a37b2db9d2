package advisor

import (
	"fmt"
	"strings"
	"time"

	"quotechain/internal/domain"
)

const advisoryGuidelines = `You are a market data advisor bot covering crypto pairs and major US equity indices. Your role is to interpret the price data you are given, NOT to invent numbers.

Data confidence:
- VALIDATED quotes were cross-checked against an independent reference source. Treat them as reliable.
- UNVERIFIED quotes could not be cross-checked; the upstream reference was unavailable or disagreed. Treat them with caution and say so when they matter to the answer.

Rules:
- Always reference the specific prices and sources in the data when making observations.
- Never fabricate data. If an instrument is missing from the data, say so.
- Express uncertainty when quotes are unverified or stale.
- Keep responses concise and actionable. You are talking via Telegram.
- Do not provide financial advice disclaimers on every message. The user understands this is informational.
- When asked about an instrument, summarize: current price, its source, and how fresh the value is.`

func BuildSystemPrompt(marketContext string) string {
	var sb strings.Builder
	sb.WriteString(advisoryGuidelines)
	sb.WriteString("\n\n--- LIVE MARKET DATA (as of ")
	sb.WriteString(time.Now().UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(marketContext)
	return sb.String()
}

func FormatMarketContext(resolutions []*domain.Resolution) string {
	var sb strings.Builder

	if len(resolutions) > 0 {
		sb.WriteString("\nCurrent Quotes:\n")
		for _, res := range resolutions {
			if res == nil || res.Quote == nil {
				continue
			}
			q := res.Quote
			confidence := "VALIDATED"
			if res.Status == domain.StatusDegraded {
				confidence = "UNVERIFIED"
			}
			sb.WriteString(fmt.Sprintf("  %s: $%.2f via %s [%s, as of %s UTC]\n",
				q.Instrument, q.Price, q.Source, confidence,
				q.FetchedAt.UTC().Format("15:04:05")))
		}
	}

	if sb.Len() == 0 {
		return "No market data currently available."
	}
	return sb.String()
}
