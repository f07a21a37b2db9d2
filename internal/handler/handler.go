package handler

import (
	"context"

	"quotechain/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// QuoteService is the handler-side view of the quote orchestration layer.
type QuoteService interface {
	GetQuote(ctx context.Context, instrument string) (*domain.Resolution, error)
	GetQuotes(ctx context.Context) ([]*domain.Resolution, error)
	GetHistory(ctx context.Context, instrument string, limit int) ([]*domain.Quote, error)
	Chains() map[domain.InstrumentClass][]domain.ProviderSpec
}

type Handler struct {
	tracer trace.Tracer
	quotes QuoteService
}

func New(tracer trace.Tracer, quotes QuoteService) *Handler {
	return &Handler{
		tracer: tracer,
		quotes: quotes,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/quotes", h.GetAllQuotes)
	api.GET("/quotes/:instrument", h.GetQuote)
	api.GET("/quotes/:instrument/history", h.GetQuoteHistory)
	api.GET("/providers", h.GetProviders)
}
