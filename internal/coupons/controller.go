package coupons

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

func (c *Controller) CreateCoupon(ctx *gin.Context) {
	var req CreateCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	coupon, err := c.service.Create(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Coupon created successfully", coupon, nil)
}

func (c *Controller) GetCoupon(ctx *gin.Context) {
	code := ctx.Param("code")
	if code == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Coupon code is required", nil, "missing coupon code")
		return
	}

	coupon, err := c.service.GetByCode(ctx.Request.Context(), code)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrCouponNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon retrieved successfully", coupon, nil)
}

func (c *Controller) GetAllCoupons(ctx *gin.Context) {
	coupons, err := c.service.GetAll(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list coupons", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupons retrieved successfully", coupons, nil)
}

func (c *Controller) PreviewCoupon(ctx *gin.Context) {
	var req PreviewCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	preview, err := c.service.Preview(ctx.Request.Context(), req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrCouponNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon preview calculated", preview, nil)
}

func (c *Controller) DeactivateCoupon(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := c.service.Deactivate(ctx.Request.Context(), id); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrCouponNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon deactivated successfully", nil, nil)
}

func (c *Controller) DeleteCoupon(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := c.service.Delete(ctx.Request.Context(), id); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrCouponNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Coupon deleted successfully", nil, nil)
}
