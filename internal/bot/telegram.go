package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"quotechain/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// QuoteService is the bot-side view of quote resolution.
type QuoteService interface {
	GetQuote(ctx context.Context, instrument string) (*domain.Resolution, error)
	Chains() map[domain.InstrumentClass][]domain.ProviderSpec
}

// Advisor answers free-form questions with market context.
type Advisor interface {
	Ask(ctx context.Context, chatID int64, userMessage string) (string, error)
}

func StartTelegramBot(token string, quotes QuoteService, advisor Advisor) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/quote", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /quote BTCUSDT\nSupported: %s", strings.Join(domain.SupportedInstruments(), ", ")))
		}
		instrument := strings.ToUpper(args[0])
		if _, ok := domain.ClassOf(instrument); !ok {
			return c.Send(fmt.Sprintf("Unknown instrument: %s\nSupported: %s", instrument, strings.Join(domain.SupportedInstruments(), ", ")))
		}
		res, err := quotes.GetQuote(context.Background(), instrument)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching quote for %s: %v", instrument, err))
		}
		return c.Send(FormatQuoteAlert(res))
	})

	b.Handle("/providers", func(c tele.Context) error {
		var sb strings.Builder
		sb.WriteString("Configured data sources, highest priority first:\n")
		for class, specs := range quotes.Chains() {
			sb.WriteString(fmt.Sprintf("\n%s:\n", class))
			for _, spec := range specs {
				sb.WriteString(fmt.Sprintf("  %d. %s\n", spec.Rank, spec.Name))
			}
		}
		return c.Send(sb.String())
	})

	b.Handle("/ask", func(c tele.Context) error {
		if advisor == nil {
			return c.Send("Advisor is not configured")
		}
		question := strings.TrimSpace(strings.TrimPrefix(c.Text(), "/ask"))
		if question == "" {
			return c.Send("Usage: /ask should I be worried about BTC today?")
		}
		answer, err := advisor.Ask(context.Background(), c.Chat().ID, question)
		if err != nil {
			return c.Send(fmt.Sprintf("Advisor error: %v", err))
		}
		return c.Send(answer)
	})

	log.Println("Telegram bot started")
	go b.Start()
}

// FormatQuoteAlert renders a resolution for chat delivery. Degraded quotes
// are flagged so nobody trades on an unverified number.
func FormatQuoteAlert(res *domain.Resolution) string {
	q := res.Quote
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\nPrice: $%s\nSource: %s\nAs of: %s UTC",
		q.Instrument, formatPrice(q.Price), q.Source, q.FetchedAt.UTC().Format("2006-01-02 15:04:05")))

	if res.Status == domain.StatusDegraded {
		sb.WriteString("\n⚠️ Unverified: cross-validation unavailable, value may be stale")
	}
	return sb.String()
}

// formatPrice keeps small-cap prices readable: sub-dollar assets like SHIB
// need more precision than a two-decimal format gives.
func formatPrice(price float64) string {
	if price < 1 {
		return fmt.Sprintf("%.6f", price)
	}
	return fmt.Sprintf("%.2f", price)
}
