// README: Shared handler helpers: service error to HTTP status mapping.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridenow/internal/auth"
	"ridenow/internal/modules/identity"
	"ridenow/internal/modules/rating"
	"ridenow/internal/modules/ride"
	"ridenow/internal/modules/wallet"
)

// writeServiceError maps sentinel errors from the service layer onto HTTP
// statuses. Unknown errors become a generic 500 so internals never leak.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrNotFound),
		errors.Is(err, identity.ErrNotFound),
		errors.Is(err, wallet.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ride.ErrConflict),
		errors.Is(err, identity.ErrConflict),
		errors.Is(err, ride.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ride.ErrValidation),
		errors.Is(err, rating.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
