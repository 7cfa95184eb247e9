package coupons

import (
	"ridepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCouponRoutes(rg *gin.RouterGroup, controller *Controller) {

	// CUSTOMER COUPON OPERATIONS

	coupons := rg.Group("/coupons")
	coupons.Use(middleware.JWTAuth())
	{
		coupons.GET("/:code", controller.GetCoupon)       // GET /api/v1/coupons/:code
		coupons.POST("/preview", controller.PreviewCoupon) // POST /api/v1/coupons/preview
	}

	// ADMIN COUPON MANAGEMENT

	adminCoupons := rg.Group("/admin/coupons")
	adminCoupons.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminCoupons.POST("", controller.CreateCoupon)                 // POST /api/v1/admin/coupons
		adminCoupons.GET("", controller.GetAllCoupons)                 // GET /api/v1/admin/coupons
		adminCoupons.PUT("/:id/deactivate", controller.DeactivateCoupon) // PUT /api/v1/admin/coupons/:id/deactivate
		adminCoupons.DELETE("/:id", controller.DeleteCoupon)           // DELETE /api/v1/admin/coupons/:id
	}
}
