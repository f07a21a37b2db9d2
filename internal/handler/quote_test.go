package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quotechain/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type quoteServiceStub struct {
	res     *domain.Resolution
	resErr  error
	history []*domain.Quote
	chains  map[domain.InstrumentClass][]domain.ProviderSpec
}

func (s quoteServiceStub) GetQuote(ctx context.Context, instrument string) (*domain.Resolution, error) {
	if s.resErr != nil {
		return nil, s.resErr
	}
	return s.res, nil
}

func (s quoteServiceStub) GetQuotes(ctx context.Context) ([]*domain.Resolution, error) {
	if s.resErr != nil {
		return nil, s.resErr
	}
	return []*domain.Resolution{s.res}, nil
}

func (s quoteServiceStub) GetHistory(ctx context.Context, instrument string, limit int) ([]*domain.Quote, error) {
	if s.resErr != nil {
		return nil, s.resErr
	}
	return s.history, nil
}

func (s quoteServiceStub) Chains() map[domain.InstrumentClass][]domain.ProviderSpec {
	return s.chains
}

func newTestRouter(svc QuoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(trace.NewNoopTracerProvider().Tracer("test"), svc)
	h.RegisterRoutes(r, "")
	return r
}

func TestGetQuote(t *testing.T) {
	res := &domain.Resolution{
		Quote: &domain.Quote{
			Instrument: "BTCUSDT",
			Class:      domain.ClassCrypto,
			Price:      64990.25,
			FetchedAt:  time.Now().UTC(),
			Source:     "Binance",
		},
		Status: domain.StatusSucceeded,
	}
	r := newTestRouter(quoteServiceStub{res: res})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/quotes/btcusdt", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body domain.Resolution
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Quote.Price != 64990.25 || body.Status != domain.StatusSucceeded {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestGetQuoteUnknownInstrument(t *testing.T) {
	r := newTestRouter(quoteServiceStub{resErr: domain.ErrUnknownInstrument})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/quotes/FAKE", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Supported []string `json:"supported_instruments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(body.Supported) == 0 {
		t.Fatal("expected supported instrument list in response")
	}
}

func TestGetQuoteAllSourcesDown(t *testing.T) {
	exhausted := &domain.ExhaustedError{
		Instrument: "BTCUSDT",
		Attempts: []domain.Attempt{
			{Provider: "Binance", Outcome: domain.OutcomeFetchFailed, Reason: "timeout"},
			{Provider: "CoinGecko", Outcome: domain.OutcomeFetchFailed, Reason: "503"},
		},
	}
	r := newTestRouter(quoteServiceStub{resErr: exhausted})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/quotes/BTCUSDT", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body struct {
		Error string   `json:"error"`
		Tried []string `json:"tried"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Error != "data unavailable, try again later" {
		t.Fatalf("unexpected error message: %s", body.Error)
	}
	if len(body.Tried) != 2 || body.Tried[0] != "Binance" {
		t.Fatalf("expected tried providers in order, got %v", body.Tried)
	}
}

func TestGetQuoteHistory(t *testing.T) {
	history := []*domain.Quote{
		{Instrument: "SPX", Class: domain.ClassIndex, Price: 5234.18, Source: "Yahoo Finance"},
	}
	r := newTestRouter(quoteServiceStub{history: history})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/quotes/SPX/history?limit=5", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Instrument string          `json:"instrument"`
		Quotes     []*domain.Quote `json:"quotes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Instrument != "SPX" || len(body.Quotes) != 1 {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestGetProviders(t *testing.T) {
	chains := map[domain.InstrumentClass][]domain.ProviderSpec{
		domain.ClassCrypto: {
			{Name: "Binance", Rank: 1},
			{Name: "CoinGecko", Rank: 2},
		},
	}
	r := newTestRouter(quoteServiceStub{chains: chains})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/providers", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Chains map[string][]domain.ProviderSpec `json:"chains"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(body.Chains["crypto"]) != 2 {
		t.Fatalf("unexpected chains: %+v", body.Chains)
	}
}

func TestAPIKeyAuthEnforced(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(trace.NewNoopTracerProvider().Tracer("test"), quoteServiceStub{})
	h.RegisterRoutes(r, "secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/providers", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/providers", nil)
	req.Header.Set("X-API-Key", "wrong")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with bad key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/providers", nil)
	req.Header.Set("X-API-Key", "secret")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid key, got %d", w.Code)
	}
}
