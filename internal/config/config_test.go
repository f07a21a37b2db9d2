package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PROVIDER_TIMEOUT_SECS", "")
	t.Setenv("PROVIDER_ATTEMPTS", "")
	t.Setenv("VALIDATION_TOLERANCE_PCT", "")
	t.Setenv("QUOTE_POLL_SECS", "")
	t.Setenv("CRYPTO_PROVIDERS", "")
	t.Setenv("INDEX_PROVIDERS", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.ProviderTimeoutSecs != 10 || cfg.ProviderAttempts != 2 {
		t.Fatalf("unexpected provider defaults: %+v", cfg)
	}
	if cfg.ValidationTolerancePct != 1.0 {
		t.Fatalf("expected default tolerance 1.0, got %v", cfg.ValidationTolerancePct)
	}
	if cfg.QuotePollSecs != 60 {
		t.Fatalf("expected default poll secs 60, got %d", cfg.QuotePollSecs)
	}
	if cfg.CryptoProviders != nil || cfg.IndexProviders != nil {
		t.Fatalf("expected no chain overrides, got %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("PROVIDER_TIMEOUT_SECS", "5")
	t.Setenv("VALIDATION_TOLERANCE_PCT", "2.5")
	t.Setenv("CRYPTO_PROVIDERS", "CoinGecko, Binance ,CoinCap")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ProviderTimeoutSecs != 5 {
		t.Fatalf("expected timeout 5, got %d", cfg.ProviderTimeoutSecs)
	}
	if cfg.ValidationTolerancePct != 2.5 {
		t.Fatalf("expected tolerance 2.5, got %v", cfg.ValidationTolerancePct)
	}
	if len(cfg.CryptoProviders) != 3 || cfg.CryptoProviders[1] != "Binance" {
		t.Fatalf("unexpected chain override: %v", cfg.CryptoProviders)
	}

	t.Setenv("PROVIDER_TIMEOUT_SECS", "bad")
	cfg = Load()
	if cfg.ProviderTimeoutSecs != 10 {
		t.Fatalf("invalid timeout should fall back to default, got %d", cfg.ProviderTimeoutSecs)
	}
}
