// README: Ride endpoints: request, accept, lifecycle transitions, history, rating.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridenow/internal/http/middleware"
	"ridenow/internal/modules/identity"
	"ridenow/internal/modules/rating"
	"ridenow/internal/modules/ride"
	"ridenow/internal/types"
)

type RideHandler struct {
	rides    *ride.Service
	identity *identity.Service
	ratings  *rating.Service
}

func NewRideHandler(rides *ride.Service, idsvc *identity.Service, ratings *rating.Service) *RideHandler {
	return &RideHandler{rides: rides, identity: idsvc, ratings: ratings}
}

type requestRideRequest struct {
	Pickup  types.Point `json:"pickup" binding:"required"`
	Dropoff types.Point `json:"dropoff" binding:"required"`
}

type rideResponse struct {
	ID            types.ID    `json:"id"`
	RequestID     types.ID    `json:"request_id"`
	RiderID       types.ID    `json:"rider_id"`
	DriverID      types.ID    `json:"driver_id"`
	Pickup        types.Point `json:"pickup"`
	Dropoff       types.Point `json:"dropoff"`
	OTP           string      `json:"otp"`
	Status        ride.Status `json:"status"`
	Fare          *float64    `json:"fare,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	CreatedAt     time.Time   `json:"created_at"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	EndedAt       *time.Time  `json:"ended_at,omitempty"`
}

func toRideResponse(r *ride.Ride) rideResponse {
	return rideResponse{
		ID:            r.ID,
		RequestID:     r.RequestID,
		RiderID:       r.RiderID,
		DriverID:      r.DriverID,
		Pickup:        r.Pickup,
		Dropoff:       r.Dropoff,
		OTP:           r.OTP,
		Status:        r.Status,
		Fare:          r.Fare,
		PaymentMethod: string(r.PaymentMethod),
		CreatedAt:     r.CreatedAt,
		StartedAt:     r.StartedAt,
		EndedAt:       r.EndedAt,
	}
}

// Request creates a ride request for the authenticated rider and returns the
// pre-screened driver candidates.
func (h *RideHandler) Request(c *gin.Context) {
	var req requestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rider, err := h.identity.FindRiderByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	rr, candidates, err := h.rides.RequestRide(c.Request.Context(), ride.RequestCommand{
		RiderID: rider.ID,
		Pickup:  req.Pickup,
		Dropoff: req.Dropoff,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"request_id": rr.ID,
		"status":     rr.Status,
		"candidates": candidates,
	})
}

// Accept lets the authenticated driver claim a pending ride request.
func (h *RideHandler) Accept(c *gin.Context) {
	driver, err := h.identity.FindDriverByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	r, err := h.rides.AcceptRide(c.Request.Context(), ride.AcceptCommand{
		RequestID: types.ID(c.Param("id")),
		DriverID:  driver.ID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRideResponse(r))
}

type startRideRequest struct {
	OTP string `json:"otp" binding:"required"`
}

func (h *RideHandler) Start(c *gin.Context) {
	var req startRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.rides.StartRide(c.Request.Context(), ride.StartCommand{
		RideID: types.ID(c.Param("id")),
		OTP:    req.OTP,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(r))
}

func (h *RideHandler) End(c *gin.Context) {
	r, err := h.rides.EndRide(c.Request.Context(), ride.EndCommand{RideID: types.ID(c.Param("id"))})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(r))
}

func (h *RideHandler) Cancel(c *gin.Context) {
	r, err := h.rides.CancelRide(c.Request.Context(), ride.CancelCommand{RideID: types.ID(c.Param("id"))})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(r))
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.GetRide(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(r))
}

// RiderHistory lists the authenticated rider's rides, newest first.
func (h *RideHandler) RiderHistory(c *gin.Context) {
	rider, err := h.identity.FindRiderByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	limit, offset := pageParams(c)
	rides, err := h.rides.RidesByRider(c.Request.Context(), rider.ID, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rideListResponse(rides))
}

func (h *RideHandler) DriverHistory(c *gin.Context) {
	driver, err := h.identity.FindDriverByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	limit, offset := pageParams(c)
	rides, err := h.rides.RidesByDriver(c.Request.Context(), driver.ID, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rideListResponse(rides))
}

func rideListResponse(rides []ride.Ride) []rideResponse {
	out := make([]rideResponse, len(rides))
	for i := range rides {
		out[i] = toRideResponse(&rides[i])
	}
	return out
}

type rateRequest struct {
	Score int `json:"score" binding:"required"`
}

func (h *RideHandler) RateDriver(c *gin.Context) {
	h.rate(c, h.ratings.RateDriver)
}

func (h *RideHandler) RateRider(c *gin.Context) {
	h.rate(c, h.ratings.RateRider)
}

func (h *RideHandler) rate(c *gin.Context, fn func(context.Context, types.ID, int) (float64, error)) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	avg, err := fn(c.Request.Context(), types.ID(c.Param("id")), req.Score)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average_rating": avg})
}
