package coupons

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCoupon() *Coupon {
	now := time.Now()
	return &Coupon{
		Code:               "SAVE10",
		Kind:               KindPercentage,
		DiscountPercentage: 10,
		ValidFrom:          now.Add(-time.Hour),
		ValidTo:            now.Add(time.Hour),
		Active:             true,
	}
}

func TestEvaluatePercentageDiscount(t *testing.T) {
	coupon := validCoupon()

	discount, err := Evaluate(coupon, 200000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(20000), discount)
}

func TestEvaluateFixedDiscount(t *testing.T) {
	coupon := validCoupon()
	coupon.Kind = KindFixed
	coupon.Amount = 5000

	discount, err := Evaluate(coupon, 200000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(5000), discount)
}

func TestEvaluateCapsDiscount(t *testing.T) {
	coupon := validCoupon()
	coupon.DiscountPercentage = 50
	coupon.MaxDiscountAmount = 100000

	discount, err := Evaluate(coupon, 500000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(100000), discount)
}

func TestEvaluateNeverExceedsOrderAmount(t *testing.T) {
	coupon := validCoupon()
	coupon.Kind = KindFixed
	coupon.Amount = 80000

	discount, err := Evaluate(coupon, 30000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(30000), discount)
}

func TestEvaluateZeroPercentage(t *testing.T) {
	coupon := validCoupon()
	coupon.DiscountPercentage = 0

	discount, err := Evaluate(coupon, 200000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), discount)
}

func TestEvaluateRejectionOrder(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(*Coupon)
		reason string
	}{
		{
			name:   "inactive wins over everything",
			mutate: func(c *Coupon) { c.Active = false; c.ValidTo = now.Add(-time.Hour) },
			reason: "inactive",
		},
		{
			name:   "not yet valid",
			mutate: func(c *Coupon) { c.ValidFrom = now.Add(time.Hour) },
			reason: "not yet valid",
		},
		{
			name:   "expired",
			mutate: func(c *Coupon) { c.ValidTo = now.Add(-time.Minute) },
			reason: "expired",
		},
		{
			name:   "usage limit reached",
			mutate: func(c *Coupon) { c.UsageLimit = 5; c.UsageCount = 5 },
			reason: "usage limit reached",
		},
		{
			name:   "below minimum order amount",
			mutate: func(c *Coupon) { c.MinBookingAmount = 500000 },
			reason: "order amount below minimum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := validCoupon()
			tt.mutate(coupon)

			_, err := Evaluate(coupon, 200000, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCouponRejected)

			var rejected *RejectedError
			require.True(t, errors.As(err, &rejected))
			assert.Equal(t, tt.reason, rejected.Reason)
			assert.Equal(t, coupon.Code, rejected.Code)
		})
	}
}

func TestEvaluateUnlimitedUsage(t *testing.T) {
	coupon := validCoupon()
	coupon.UsageLimit = 0
	coupon.UsageCount = 100000

	_, err := Evaluate(coupon, 200000, time.Now())
	assert.NoError(t, err)
}

func TestEvaluateBoundaryTimes(t *testing.T) {
	now := time.Now()
	coupon := validCoupon()
	coupon.ValidFrom = now
	coupon.ValidTo = now

	// The window is inclusive at both ends
	_, err := Evaluate(coupon, 200000, now)
	assert.NoError(t, err)
}
