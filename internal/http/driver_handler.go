// README: Driver endpoints: availability toggling and location updates.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridenow/internal/http/middleware"
	"ridenow/internal/modules/identity"
	"ridenow/internal/modules/matching"
	"ridenow/internal/types"
)

type DriverHandler struct {
	identity *identity.Service
	matching *matching.Service
}

func NewDriverHandler(idsvc *identity.Service, match *matching.Service) *DriverHandler {
	return &DriverHandler{identity: idsvc, matching: match}
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// SetAvailability flips the driver on or off the market and keeps the
// matching pool in sync.
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	driver, err := h.identity.FindDriverByUserID(ctx, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if err := h.identity.SetDriverAvailability(ctx, driver.ID, *req.Available); err != nil {
		writeServiceError(c, err)
		return
	}
	if *req.Available {
		err = h.matching.DriverOnline(ctx, driver.ID, driver.Location)
	} else {
		err = h.matching.DriverOffline(ctx, driver.ID)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver_id": driver.ID, "available": *req.Available})
}

type locationRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

// UpdateLocation stores the driver's position and refreshes the geo index
// used for matching.
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	driver, err := h.identity.FindDriverByUserID(ctx, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	pos := types.Point{Lat: req.Lat, Lng: req.Lng}
	if err := h.identity.UpdateDriverLocation(ctx, driver.ID, pos); err != nil {
		writeServiceError(c, err)
		return
	}
	if driver.Available {
		if err := h.matching.UpdateDriverLocation(ctx, driver.ID, pos); err != nil {
			writeServiceError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"driver_id": driver.ID, "location": pos})
}
