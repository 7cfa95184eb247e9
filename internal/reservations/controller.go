package reservations

import (
	"errors"
	"net/http"

	"ridepass/internal/seats"
	"ridepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) CreateReservation(ctx *gin.Context) {
	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		var conflict *seats.ConflictError
		switch {
		case errors.As(err, &conflict):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Seats unavailable", gin.H{
				"conflicting_seats": conflict.SeatIDs,
			}, err.Error())
		case errors.Is(err, seats.ErrSeatUnavailable):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Seats unavailable", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create reservation", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Reservation created successfully", reservation, nil)
}

func (c *Controller) ConfirmReservation(ctx *gin.Context) {
	reservationID, userID, ok := reservationAndUser(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.Confirm(ctx.Request.Context(), reservationID, userID)
	if err != nil {
		respondLifecycleError(ctx, err, "Failed to confirm reservation")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation confirmed successfully", reservation, nil)
}

func (c *Controller) CancelReservation(ctx *gin.Context) {
	reservationID, userID, ok := reservationAndUser(ctx)
	if !ok {
		return
	}

	if err := c.service.Cancel(ctx.Request.Context(), reservationID, userID); err != nil {
		respondLifecycleError(ctx, err, "Failed to cancel reservation")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation cancelled successfully", nil, nil)
}

func (c *Controller) GetReservation(ctx *gin.Context) {
	reservationID, userID, ok := reservationAndUser(ctx)
	if !ok {
		return
	}

	reservation, err := c.service.GetByID(ctx.Request.Context(), reservationID, userID)
	if err != nil {
		respondLifecycleError(ctx, err, "Failed to get reservation")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

func (c *Controller) GetMyReservations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var query ReservationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.GetUserReservations(ctx.Request.Context(), userID, query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list reservations", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservations retrieved successfully", result, nil)
}

func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw.(string))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return uuid.Nil, false
	}
	return userID, true
}

func reservationAndUser(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	reservationID, err := uuid.Parse(ctx.Param("reservationId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid reservation ID", nil, err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return reservationID, userID, true
}

func respondLifecycleError(ctx *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, message, nil, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.RespondJSON(ctx, "error", http.StatusForbidden, message, nil, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.RespondJSON(ctx, "error", http.StatusConflict, message, nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, message, nil, err.Error())
	}
}
