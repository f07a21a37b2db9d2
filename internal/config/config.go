package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	APIKey           string

	BinanceAPIKey    string
	BinanceAPISecret string
	CryptoAPIsKey    string
	AlphaVantageKey  string

	// Comma-separated provider chain overrides, highest priority first.
	// Empty means the built-in default order.
	CryptoProviders []string
	IndexProviders  []string

	ProviderTimeoutSecs    int
	ProviderAttempts       int
	ValidationTolerancePct float64

	QuotePollSecs int

	OpenAIAPIKey      string
	OpenAIModel       string
	AdvisorMaxHistory int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           os.Getenv("API_KEY"),
		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceAPISecret: os.Getenv("BINANCE_API_SECRET"),
		CryptoAPIsKey:    os.Getenv("CRYPTOAPIS_KEY"),
		AlphaVantageKey:  os.Getenv("ALPHAVANTAGE_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.CryptoProviders = splitList(os.Getenv("CRYPTO_PROVIDERS"))
	cfg.IndexProviders = splitList(os.Getenv("INDEX_PROVIDERS"))

	cfg.ProviderTimeoutSecs = 10
	if v := strings.TrimSpace(os.Getenv("PROVIDER_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProviderTimeoutSecs = n
		}
	}

	cfg.ProviderAttempts = 2
	if v := strings.TrimSpace(os.Getenv("PROVIDER_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProviderAttempts = n
		}
	}

	cfg.ValidationTolerancePct = 1.0
	if v := strings.TrimSpace(os.Getenv("VALIDATION_TOLERANCE_PCT")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.ValidationTolerancePct = n
		}
	}

	cfg.QuotePollSecs = 60
	if v := strings.TrimSpace(os.Getenv("QUOTE_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QuotePollSecs = n
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.AdvisorMaxHistory = 20
	if v := os.Getenv("ADVISOR_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AdvisorMaxHistory = n
		}
	}

	return cfg
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
