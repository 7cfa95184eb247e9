package reservations

import (
	"ridepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller) {

	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.CreateReservation)                       // POST /api/v1/reservations
		reservations.GET("", controller.GetMyReservations)                        // GET /api/v1/reservations
		reservations.GET("/:reservationId", controller.GetReservation)            // GET /api/v1/reservations/:reservationId
		reservations.POST("/:reservationId/confirm", controller.ConfirmReservation) // POST /api/v1/reservations/:reservationId/confirm
		reservations.POST("/:reservationId/cancel", controller.CancelReservation)   // POST /api/v1/reservations/:reservationId/cancel
	}
}
