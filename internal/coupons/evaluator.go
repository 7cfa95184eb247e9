package coupons

import (
	"errors"
	"fmt"
	"time"
)

var ErrCouponRejected = errors.New("coupon rejected")

// RejectedError carries the first rejection reason in evaluation order
type RejectedError struct {
	Code   string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return ErrCouponRejected
}

func reject(code, reason string) error {
	return &RejectedError{Code: code, Reason: reason}
}

// Evaluate computes the discount a coupon grants on an order amount at the
// given instant. It is a pure function of its inputs: eligibility checks run
// in a fixed order and the first failure wins, so rejection reasons are
// deterministic. The discount is clamped to the cap and never exceeds the
// order amount.
func Evaluate(c *Coupon, orderAmount int64, now time.Time) (int64, error) {
	if !c.Active {
		return 0, reject(c.Code, "inactive")
	}
	if now.Before(c.ValidFrom) {
		return 0, reject(c.Code, "not yet valid")
	}
	if now.After(c.ValidTo) {
		return 0, reject(c.Code, "expired")
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return 0, reject(c.Code, "usage limit reached")
	}
	if orderAmount < c.MinBookingAmount {
		return 0, reject(c.Code, "order amount below minimum")
	}

	var discount int64
	switch c.Kind {
	case KindPercentage:
		discount = orderAmount * int64(c.DiscountPercentage) / 100
	case KindFixed:
		discount = c.Amount
	default:
		return 0, reject(c.Code, "unknown coupon kind")
	}

	if c.MaxDiscountAmount > 0 && discount > c.MaxDiscountAmount {
		discount = c.MaxDiscountAmount
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}

	return discount, nil
}
