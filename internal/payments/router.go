package payments

import (
	"ridepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller) {

	// GATEWAY WEBHOOK (authenticated by the gateway's own signing scheme at
	// the edge, not by user JWTs)

	payments := rg.Group("/payments")
	{
		payments.POST("/callback", controller.PaymentCallback) // POST /api/v1/payments/callback
	}

	// CUSTOMER PAYMENT HISTORY

	reservationPayments := rg.Group("/reservations")
	reservationPayments.Use(middleware.JWTAuth())
	{
		reservationPayments.GET("/:reservationId/payments", controller.GetReservationPayments) // GET /api/v1/reservations/:reservationId/payments
	}

	// ADMIN REVIEW QUEUE

	review := rg.Group("/admin/payments")
	review.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		review.GET("/review", controller.ListReviewQueue)              // GET /api/v1/admin/payments/review
		review.POST("/review/:recordId/resolve", controller.ResolveReview) // POST /api/v1/admin/payments/review/:recordId/resolve
	}
}
