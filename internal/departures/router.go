package departures

import (
	"ridepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupDepartureRoutes(rg *gin.RouterGroup, controller Controller) {

	// PUBLIC DEPARTURE BROWSING

	departures := rg.Group("/departures")
	{
		departures.GET("", controller.GetAllDepartures)              // GET /api/v1/departures
		departures.GET("/upcoming", controller.GetUpcomingDepartures) // GET /api/v1/departures/upcoming
		departures.GET("/:departureId", controller.GetDeparture)      // GET /api/v1/departures/:departureId
	}

	// ADMIN DEPARTURE MANAGEMENT

	adminDepartures := rg.Group("/admin/departures")
	adminDepartures.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminDepartures.POST("", controller.CreateDeparture)                // POST /api/v1/admin/departures
		adminDepartures.PUT("/:departureId", controller.UpdateDeparture)    // PUT /api/v1/admin/departures/:departureId
		adminDepartures.DELETE("/:departureId", controller.DeleteDeparture) // DELETE /api/v1/admin/departures/:departureId
	}
}
