package seats

import (
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

func (c *Controller) GetSeatMap(ctx *gin.Context) {
	departureID := ctx.Param("departureId")
	if departureID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Departure ID is required", nil, "missing departure ID")
		return
	}

	seatMap, err := c.service.GetSeatMap(ctx.Request.Context(), departureID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get seat map", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}

func (c *Controller) GetSeat(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Seat ID is required", nil, "missing seat ID")
		return
	}

	seat, err := c.service.GetSeatByID(ctx.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "seat not found" {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, "Failed to get seat", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat retrieved successfully", seat, nil)
}

func (c *Controller) GetFreeSeatCount(ctx *gin.Context) {
	departureID := ctx.Param("departureId")
	if departureID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Departure ID is required", nil, "missing departure ID")
		return
	}

	count, err := c.service.CountFreeSeats(ctx.Request.Context(), departureID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to count free seats", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Free seat count retrieved successfully", gin.H{
		"departure_id": departureID,
		"free_seats":   count,
	}, nil)
}
