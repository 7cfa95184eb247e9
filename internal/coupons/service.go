package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ridepass/internal/shared/constants"
	"ridepass/pkg/cache"
	"ridepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCouponNotFound = errors.New("coupon not found")

type Service interface {
	Create(ctx context.Context, req CreateCouponRequest) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	GetAll(ctx context.Context) ([]Coupon, error)
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	SetCacheService(cacheService cache.Service)

	// Preview evaluates a coupon against an order amount without consuming a
	// redemption slot.
	Preview(ctx context.Context, req PreviewCouponRequest) (*PreviewCouponResponse, error)

	// Quote evaluates a coupon against the live row without consuming a slot.
	// The reservation create path prices holds with it; the slot is consumed
	// only when the reservation confirms.
	Quote(ctx context.Context, code string, orderAmount int64, now time.Time) (int64, uuid.UUID, error)

	// ConsumeRedemption takes one usage slot, failing once the limit is hit
	ConsumeRedemption(ctx context.Context, couponID uuid.UUID) error
	ReleaseRedemption(ctx context.Context, couponID uuid.UUID) error
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) Create(ctx context.Context, req CreateCouponRequest) (*Coupon, error) {
	kind := Kind(req.Kind)
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid coupon kind: %s", req.Kind)
	}
	if kind == KindPercentage && req.DiscountPercentage <= 0 {
		return nil, fmt.Errorf("percentage coupons require discount_percentage > 0")
	}
	if kind == KindFixed && req.Amount <= 0 {
		return nil, fmt.Errorf("fixed coupons require amount > 0")
	}
	if !req.ValidTo.After(req.ValidFrom) {
		return nil, fmt.Errorf("valid_to must be after valid_from")
	}

	coupon := &Coupon{
		Code:               strings.ToUpper(strings.TrimSpace(req.Code)),
		Kind:               kind,
		DiscountPercentage: req.DiscountPercentage,
		Amount:             req.Amount,
		MinBookingAmount:   req.MinBookingAmount,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		ValidFrom:          req.ValidFrom,
		ValidTo:            req.ValidTo,
		UsageLimit:         req.UsageLimit,
		Active:             true,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return coupon, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	cacheKey := constants.BuildCouponKey(code)
	if s.cacheService != nil {
		var cached Coupon
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			logger.GetDefault().Debug("cache hit for coupon", "key", cacheKey)
			return &cached, nil
		}
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, coupon, constants.TTL_COUPON_DETAIL); err != nil {
			logger.GetDefault().Debug("failed to cache coupon", "error", err)
		}
	}

	return coupon, nil
}

func (s *service) GetAll(ctx context.Context) ([]Coupon, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	couponID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid coupon ID: %w", err)
	}

	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("failed to get coupon: %w", err)
	}

	if err := s.repo.Update(ctx, couponID, map[string]interface{}{"active": false}); err != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", err)
	}

	s.invalidateCouponCache(ctx, coupon.Code)
	return nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	couponID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid coupon ID: %w", err)
	}

	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("failed to get coupon: %w", err)
	}

	if err := s.repo.Delete(ctx, couponID); err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	s.invalidateCouponCache(ctx, coupon.Code)
	return nil
}

func (s *service) Preview(ctx context.Context, req PreviewCouponRequest) (*PreviewCouponResponse, error) {
	coupon, err := s.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	discount, err := Evaluate(coupon, req.OrderAmount, time.Now())
	if err != nil {
		return nil, err
	}

	return &PreviewCouponResponse{
		Code:           coupon.Code,
		OrderAmount:    req.OrderAmount,
		DiscountAmount: discount,
		PayableAmount:  req.OrderAmount - discount,
	}, nil
}

func (s *service) Quote(ctx context.Context, code string, orderAmount int64, now time.Time) (int64, uuid.UUID, error) {
	// Quoting reads the live row, not the cache, so the usage counter check is
	// never stale.
	coupon, err := s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, uuid.Nil, ErrCouponNotFound
		}
		return 0, uuid.Nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	discount, err := Evaluate(coupon, orderAmount, now)
	if err != nil {
		return 0, uuid.Nil, err
	}

	return discount, coupon.ID, nil
}

func (s *service) ConsumeRedemption(ctx context.Context, couponID uuid.UUID) error {
	if err := s.repo.IncrementUsage(ctx, couponID); err != nil {
		if errors.Is(err, ErrUsageLimitExhausted) {
			return reject(couponID.String(), "usage limit reached")
		}
		return err
	}

	if coupon, err := s.repo.GetByID(ctx, couponID); err == nil {
		s.invalidateCouponCache(ctx, coupon.Code)
	}
	return nil
}

func (s *service) ReleaseRedemption(ctx context.Context, couponID uuid.UUID) error {
	if err := s.repo.DecrementUsage(ctx, couponID); err != nil {
		return fmt.Errorf("failed to release coupon redemption: %w", err)
	}
	return nil
}

func (s *service) invalidateCouponCache(ctx context.Context, code string) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildCouponKey(code)); err != nil {
		logger.GetDefault().Debug("failed to invalidate coupon cache", "error", err)
	}
}
