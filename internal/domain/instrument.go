package domain

import (
	"fmt"
	"strings"
)

// InstrumentClass determines which provider chain applies to an instrument.
type InstrumentClass string

const (
	ClassCrypto InstrumentClass = "crypto"
	ClassIndex  InstrumentClass = "index"
)

func (c InstrumentClass) IsValid() bool {
	return c == ClassCrypto || c == ClassIndex
}

// CryptoSlug maps crypto base assets to the asset identifier used by
// CoinGecko, CoinCap, and Crypto APIs.
var CryptoSlug = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"SHIB": "shiba-inu",
	"DOT":  "polkadot",
	"AVAX": "avalanche-2",
	"LINK": "chainlink",
}

// YahooSymbol maps index instruments to Yahoo Finance chart symbols.
var YahooSymbol = map[string]string{
	"SPX": "^GSPC",
	"NDX": "^NDX",
	"DJI": "^DJI",
}

// SupportedCrypto lists the crypto pairs the service resolves.
var SupportedCrypto = []string{
	"BTCUSDT", "ETHUSDT", "SOLUSDT", "BNBUSDT", "XRPUSDT",
	"ADAUSDT", "DOGEUSDT", "SHIBUSDT", "DOTUSDT", "AVAXUSDT", "LINKUSDT",
}

// SupportedIndices lists the equity index instruments the service resolves.
var SupportedIndices = []string{"SPX", "NDX", "DJI"}

// quoteAssets are the pair suffixes recognized when splitting a crypto instrument.
var quoteAssets = []string{"USDT", "USDC", "USD"}

// ClassOf returns the instrument class for a supported instrument.
func ClassOf(instrument string) (InstrumentClass, bool) {
	for _, s := range SupportedCrypto {
		if s == instrument {
			return ClassCrypto, true
		}
	}
	for _, s := range SupportedIndices {
		if s == instrument {
			return ClassIndex, true
		}
	}
	return "", false
}

// SupportedInstruments returns all instruments across classes, crypto first.
func SupportedInstruments() []string {
	out := make([]string, 0, len(SupportedCrypto)+len(SupportedIndices))
	out = append(out, SupportedCrypto...)
	out = append(out, SupportedIndices...)
	return out
}

// SplitPair splits a crypto instrument like "BTCUSDT" into base and quote assets.
func SplitPair(instrument string) (base, quote string, err error) {
	upper := strings.ToUpper(strings.TrimSpace(instrument))
	for _, q := range quoteAssets {
		if strings.HasSuffix(upper, q) && len(upper) > len(q) {
			return upper[:len(upper)-len(q)], q, nil
		}
	}
	return "", "", fmt.Errorf("cannot split pair %q: unknown quote asset", instrument)
}
