package boarding

import (
	"ridepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBoardingRoutes(rg *gin.RouterGroup, controller *Controller) {

	// Gate agents carry staff credentials on their scanners

	boarding := rg.Group("/boarding")
	boarding.Use(middleware.JWTAuth(), middleware.RequireRoles("STAFF", "ADMIN"))
	{
		boarding.POST("/scan", controller.Scan) // POST /api/v1/boarding/scan
	}
}
