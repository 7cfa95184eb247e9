package seats

import (
	"context"
	"errors"
	"fmt"

	"ridepass/internal/shared/config"
	"ridepass/internal/shared/constants"
	"ridepass/pkg/cache"
	"ridepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	// Seat map (read side)
	GetSeatMap(ctx context.Context, departureID string) ([]SeatView, error)
	GetSeatByID(ctx context.Context, id string) (*Seat, error)
	CountFreeSeats(ctx context.Context, departureID string) (int64, error)
	SetCacheService(cacheService cache.Service)

	// Invoked after any ledger transition to keep the cached map honest
	InvalidateSeatMap(ctx context.Context, departureID uuid.UUID)
}

type service struct {
	repo         Repository
	config       *config.Config
	cacheService cache.Service
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{
		repo:   repo,
		config: cfg,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// SEAT MAP

func (s *service) GetSeatMap(ctx context.Context, departureID string) ([]SeatView, error) {
	departureUUID, err := uuid.Parse(departureID)
	if err != nil {
		return nil, fmt.Errorf("invalid departure ID: %w", err)
	}

	cacheKey := constants.BuildSeatMapKey(departureID)
	if s.cacheService != nil {
		var cached []SeatView
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			logger.GetDefault().Debug("cache hit for seat map", "key", cacheKey)
			return cached, nil
		}
	}

	seats, err := s.repo.GetSeatsByDepartureID(ctx, departureUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}

	views := make([]SeatView, 0, len(seats))
	for _, seat := range seats {
		views = append(views, SeatView{
			ID:     seat.ID.String(),
			Label:  seat.Label,
			Status: seat.Status.String(),
		})
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, views, constants.TTL_SEAT_MAP); err != nil {
			logger.GetDefault().Debug("failed to cache seat map", "error", err)
		}
	}

	return views, nil
}

func (s *service) GetSeatByID(ctx context.Context, id string) (*Seat, error) {
	seatID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid seat ID: %w", err)
	}

	seat, err := s.repo.GetSeatByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("seat not found")
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}

	return seat, nil
}

func (s *service) CountFreeSeats(ctx context.Context, departureID string) (int64, error) {
	departureUUID, err := uuid.Parse(departureID)
	if err != nil {
		return 0, fmt.Errorf("invalid departure ID: %w", err)
	}

	return s.repo.CountFreeSeats(ctx, departureUUID)
}

func (s *service) InvalidateSeatMap(ctx context.Context, departureID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	cacheKey := constants.BuildSeatMapKey(departureID.String())
	if err := s.cacheService.Delete(ctx, cacheKey); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat map cache", "error", err)
	}
}
