package payments

import (
	"errors"
	"net/http"
	"strconv"

	"ridepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// PaymentCallback receives gateway webhooks. The response code distinguishes
// accepted work from late completions so the gateway's retry logic backs off.
func (c *Controller) PaymentCallback(ctx *gin.Context) {
	var req PaymentCallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid callback payload", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := c.service.HandleCallback(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrLatePayment) {
			// Accepted and recorded, but the reservation could not be revived.
			response.RespondJSON(ctx, "success", http.StatusAccepted, "Payment recorded for manual review", result, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process payment callback", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment callback processed", result, nil)
}

func (c *Controller) GetReservationPayments(ctx *gin.Context) {
	reservationID := ctx.Param("reservationId")
	if reservationID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Reservation ID is required", nil, "missing reservation ID")
		return
	}

	records, err := c.service.GetByReservationID(ctx.Request.Context(), reservationID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get payments", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payments retrieved successfully", records, nil)
}

func (c *Controller) ListReviewQueue(ctx *gin.Context) {
	limit := 100
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	records, err := c.service.ListRequiringReview(ctx.Request.Context(), limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list review queue", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Review queue retrieved successfully", records, nil)
}

func (c *Controller) ResolveReview(ctx *gin.Context) {
	recordID := ctx.Param("recordId")

	if err := c.service.ResolveReview(ctx.Request.Context(), recordID); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to resolve review", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Review resolved successfully", nil, nil)
}
