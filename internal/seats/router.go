package seats

import (
	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {

	// PUBLIC SEAT OPERATIONS (browsing the seat map needs no login)

	departures := rg.Group("/departures")
	{
		departures.GET("/:departureId/seats", controller.GetSeatMap)            // GET /api/v1/departures/:departureId/seats
		departures.GET("/:departureId/seats/free", controller.GetFreeSeatCount) // GET /api/v1/departures/:departureId/seats/free
	}

	seats := rg.Group("/seats")
	{
		seats.GET("/:id", controller.GetSeat) // GET /api/v1/seats/:id
	}
}
