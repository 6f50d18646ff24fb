package httpserver

import (
	"errors"
	"net/http"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// respondError writes the {success, message} body the browser expects.
func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// respondBackendError maps a backend failure to a status for the browser.
// Client errors pass through with the backend's message; everything else is
// logged and reported as a gateway problem.
func respondBackendError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		respondError(c, apiErr.Status, msg)
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, fallback)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again shortly.")
	default:
		logger.Error("backend request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusBadGateway, fallback)
	}
}
