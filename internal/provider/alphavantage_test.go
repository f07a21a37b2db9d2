package provider

import (
	"context"
	"net/http"
	"testing"
)

func TestAlphaVantageFetchQuote(t *testing.T) {
	t.Parallel()

	p := NewAlphaVantageProvider("test-key", testTracer)
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Fatalf("unexpected function param: %s", got)
		}
		if got := req.URL.Query().Get("apikey"); got != "test-key" {
			t.Fatalf("unexpected apikey param: %s", got)
		}
		body := `{"Global Quote":{"01. symbol":"SPX","05. price":"5231.9000"}}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	quote, err := p.FetchQuote(context.Background(), "SPX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Price != 5231.9 || quote.Source != "Alpha Vantage" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestAlphaVantageRateLimitNote(t *testing.T) {
	t.Parallel()

	p := NewAlphaVantageProvider("test-key", testTracer)
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := `{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	if _, err := p.FetchQuote(context.Background(), "SPX"); err == nil {
		t.Fatal("expected rate-limit error")
	}
}

func TestAlphaVantageEmptyQuote(t *testing.T) {
	t.Parallel()

	p := NewAlphaVantageProvider("test-key", testTracer)
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"Global Quote":{}}`), nil
	})}

	if _, err := p.FetchQuote(context.Background(), "SPX"); err == nil {
		t.Fatal("expected error for empty quote payload")
	}
}
