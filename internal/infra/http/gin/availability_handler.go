package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staydesk/internal/app/dto"
	availabilityapp "staydesk/internal/app/handlers/availability"
	"staydesk/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Check answers 200 even for unusable dates; the body then carries
// available=false with reason invalid_dates.
func (h AvailabilityHandler) Check(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability handler unavailable"})
		return
	}
	query := availabilityapp.CheckAvailabilityQuery{
		PropertyID: c.Param("id"),
		CheckIn:    c.Query("check_in"),
		CheckOut:   c.Query("check_out"),
	}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "availability check failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) BookedDates(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability handler unavailable"})
		return
	}
	query := availabilityapp.BookedDatesQuery{
		PropertyID: c.Param("id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}
	result, err := queries.Ask[availabilityapp.BookedDatesQuery, dto.BookedDates](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "booked dates lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
