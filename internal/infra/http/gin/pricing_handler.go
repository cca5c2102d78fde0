package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staydesk/internal/app/dto"
	pricingapp "staydesk/internal/app/handlers/pricing"
	"staydesk/internal/app/queries"
)

type quoteRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
}

// PricingHandler exposes stay quotes over HTTP.
type PricingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h PricingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pricing handler unavailable"})
		return
	}
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	query := pricingapp.QuoteStayQuery{
		PropertyID: c.Param("id"),
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
	}
	result, err := queries.Ask[pricingapp.QuoteStayQuery, dto.RateQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "quote failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
