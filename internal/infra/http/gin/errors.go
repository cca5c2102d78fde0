package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	pricingapp "staydesk/internal/app/handlers/pricing"
	"staydesk/internal/app/queries"
	"staydesk/internal/app/validation"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, daterange.ErrInvalidDateInput),
		errors.Is(err, validation.ErrInvalidInput),
		errors.Is(err, domainpricing.ErrUnknownRateType),
		errors.Is(err, pricingapp.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domainproperties.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, pricingapp.ErrPricingUnavailable),
		errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to a status code. Server-side failures are logged and
// their detail is not returned to the caller.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), msg, "status", status, "error", err, "path", c.FullPath())
		}
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
