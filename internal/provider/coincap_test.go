package provider

import (
	"context"
	"net/http"
	"testing"
)

func TestCoinCapFetchQuote(t *testing.T) {
	t.Parallel()

	p := NewCoinCapProvider(testTracer)
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/assets/ethereum" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `{"data":{"id":"ethereum","priceUsd":"3412.7713"},"timestamp":1771009800000}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	quote, err := p.FetchQuote(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Price != 3412.7713 || quote.Source != "CoinCap" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.FetchedAt.Unix() != 1771009800 {
		t.Fatalf("expected response timestamp, got %v", quote.FetchedAt)
	}
}

func TestCoinCapBadPrice(t *testing.T) {
	t.Parallel()

	p := NewCoinCapProvider(testTracer)
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"priceUsd":""},"timestamp":0}`), nil
	})}

	if _, err := p.FetchQuote(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("expected error for empty price")
	}
}

func TestCoinCapUnsupportedAsset(t *testing.T) {
	t.Parallel()

	p := NewCoinCapProvider(testTracer)
	if _, err := p.FetchQuote(context.Background(), "PEPEUSDT"); err == nil {
		t.Fatal("expected error for unmapped asset")
	}
}
