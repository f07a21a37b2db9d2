package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"quotechain/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetQuote godoc
// @Summary      Get the current quote for an instrument
// @Description  Walks the ranked provider chain and returns the resolved quote with its confidence status and attempt trail
// @Tags         quotes
// @Produce      json
// @Param        instrument  path  string  true  "Instrument (e.g., BTCUSDT, SPX)"
// @Success      200  {object}  domain.Resolution
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/quotes/{instrument} [get]
func (h *Handler) GetQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote")
	defer span.End()

	instrument := strings.ToUpper(c.Param("instrument"))
	span.SetAttributes(attribute.String("instrument", instrument))

	res, err := h.quotes.GetQuote(ctx, instrument)
	if err != nil {
		h.renderQuoteError(c, instrument, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetAllQuotes godoc
// @Summary      Get current quotes for all supported instruments
// @Description  Resolves every tracked crypto pair and market index; instruments with all sources down are omitted
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/quotes [get]
func (h *Handler) GetAllQuotes(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-all-quotes")
	defer span.End()

	resolutions, err := h.quotes.GetQuotes(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": resolutions})
}

// GetQuoteHistory godoc
// @Summary      Get persisted quote history for an instrument
// @Description  Returns recently stored quotes, newest first
// @Tags         quotes
// @Produce      json
// @Param        instrument  path   string  true   "Instrument (e.g., BTCUSDT, SPX)"
// @Param        limit       query  int     false  "Number of quotes (default 50, max 500)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/quotes/{instrument}/history [get]
func (h *Handler) GetQuoteHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote-history")
	defer span.End()

	instrument := strings.ToUpper(c.Param("instrument"))
	span.SetAttributes(attribute.String("instrument", instrument))

	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	quotes, err := h.quotes.GetHistory(ctx, instrument, limit)
	if err != nil {
		h.renderQuoteError(c, instrument, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"instrument": instrument,
		"quotes":     quotes,
	})
}

// GetProviders godoc
// @Summary      List the configured provider chains
// @Description  Returns the ranked data sources per instrument class, highest priority first
// @Tags         providers
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/providers [get]
func (h *Handler) GetProviders(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-providers")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"chains": h.quotes.Chains()})
}

func (h *Handler) renderQuoteError(c *gin.Context, instrument string, err error) {
	var exhausted *domain.ExhaustedError
	switch {
	case errors.Is(err, domain.ErrUnknownInstrument):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                 "unsupported instrument: " + instrument,
			"supported_instruments": domain.SupportedInstruments(),
		})
	case errors.As(err, &exhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":    "data unavailable, try again later",
			"tried":    exhausted.ProviderNames(),
			"attempts": exhausted.Attempts,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
