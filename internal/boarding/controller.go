package boarding

import (
	"errors"
	"net/http"

	"ridepass/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) Scan(ctx *gin.Context) {
	var req ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid scan request", nil, err.Error())
		return
	}

	result, err := c.service.Scan(ctx.Request.Context(), req, ctx.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedToken):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Malformed boarding token", nil, err.Error())
		case errors.Is(err, ErrSignatureMismatch):
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid boarding token", nil, err.Error())
		case errors.Is(err, ErrWrongDeparture):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Token does not match this departure", nil, err.Error())
		case errors.Is(err, ErrScanRejected):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Scan rejected", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process scan", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Scan processed successfully", result, nil)
}
