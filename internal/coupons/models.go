package coupons

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindPercentage Kind = "PERCENTAGE"
	KindFixed      Kind = "FIXED"
)

// IsValid checks if the coupon kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindPercentage, KindFixed:
		return true
	}
	return false
}

// Coupon is a discount rule applied at reservation time. All amounts are in
// minor currency units. A zero MaxDiscountAmount means uncapped; a zero
// UsageLimit means unlimited redemptions.
type Coupon struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Code               string    `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Kind               Kind      `json:"kind" gorm:"type:varchar(20);not null"`
	DiscountPercentage int       `json:"discount_percentage" gorm:"default:0;check:discount_percentage >= 0 AND discount_percentage <= 100"`
	Amount             int64     `json:"amount" gorm:"default:0;check:amount >= 0"`
	MinBookingAmount   int64     `json:"min_booking_amount" gorm:"default:0"`
	MaxDiscountAmount  int64     `json:"max_discount_amount" gorm:"default:0"`
	ValidFrom          time.Time `json:"valid_from" gorm:"not null"`
	ValidTo            time.Time `json:"valid_to" gorm:"not null"`
	UsageLimit         int       `json:"usage_limit" gorm:"default:0"`
	UsageCount         int       `json:"usage_count" gorm:"default:0"`
	Active             bool      `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Coupon) TableName() string {
	return "coupons"
}

type CreateCouponRequest struct {
	Code               string    `json:"code" binding:"required,min=3,max=50"`
	Kind               string    `json:"kind" binding:"required,oneof=PERCENTAGE FIXED"`
	DiscountPercentage int       `json:"discount_percentage" binding:"omitempty,min=0,max=100"`
	Amount             int64     `json:"amount" binding:"omitempty,min=0"`
	MinBookingAmount   int64     `json:"min_booking_amount" binding:"omitempty,min=0"`
	MaxDiscountAmount  int64     `json:"max_discount_amount" binding:"omitempty,min=0"`
	ValidFrom          time.Time `json:"valid_from" binding:"required"`
	ValidTo            time.Time `json:"valid_to" binding:"required"`
	UsageLimit         int       `json:"usage_limit" binding:"omitempty,min=0"`
}

type PreviewCouponRequest struct {
	Code        string `json:"code" binding:"required"`
	OrderAmount int64  `json:"order_amount" binding:"required,min=1"`
}

type PreviewCouponResponse struct {
	Code           string `json:"code"`
	OrderAmount    int64  `json:"order_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	PayableAmount  int64  `json:"payable_amount"`
}
