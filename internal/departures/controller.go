package departures

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ridepass/internal/shared/utils/response"
)

type Controller interface {
	CreateDeparture(c *gin.Context)
	GetDeparture(c *gin.Context)
	UpdateDeparture(c *gin.Context)
	DeleteDeparture(c *gin.Context)
	GetAllDepartures(c *gin.Context)
	GetUpcomingDepartures(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateDeparture(c *gin.Context) {
	var req CreateDepartureRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	// Get admin user ID from context (set by auth middleware)
	adminID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Admin not authenticated", nil, nil)
		return
	}

	adminUUID, err := uuid.Parse(adminID.(string))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Invalid admin ID format", nil, nil)
		return
	}

	departure, err := ctrl.service.Create(c.Request.Context(), req, adminUUID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Departure created successfully", departure, nil)
}

func (ctrl *controller) GetDeparture(c *gin.Context) {
	departureID := c.Param("departureId")
	if departureID == "" {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Departure ID is required", nil, "missing departure ID")
		return
	}

	departure, err := ctrl.service.GetByID(c.Request.Context(), departureID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "departure not found" {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Departure retrieved successfully", departure, nil)
}

func (ctrl *controller) UpdateDeparture(c *gin.Context) {
	departureID := c.Param("departureId")

	var req UpdateDepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	departure, err := ctrl.service.Update(c.Request.Context(), departureID, req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if err.Error() == "departure not found" {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Departure updated successfully", departure, nil)
}

func (ctrl *controller) DeleteDeparture(c *gin.Context) {
	departureID := c.Param("departureId")

	if err := ctrl.service.Delete(c.Request.Context(), departureID); err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "departure not found" {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Departure deleted successfully", nil, nil)
}

func (ctrl *controller) GetAllDepartures(c *gin.Context) {
	var query DepartureListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.GetAll(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list departures", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Departures retrieved successfully", result, nil)
}

func (ctrl *controller) GetUpcomingDepartures(c *gin.Context) {
	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	departures, err := ctrl.service.GetUpcoming(c.Request.Context(), limit)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get upcoming departures", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Upcoming departures retrieved successfully", departures, nil)
}
