package departures

import (
	"context"
	"errors"
	"fmt"

	"ridepass/internal/seats"
	"ridepass/internal/shared/config"
	"ridepass/internal/shared/constants"
	"ridepass/pkg/cache"
	"ridepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seatsPerRow fixes the cabin layout used when seeding seat rows. A 40-seat
// departure gets labels 1A..10D.
const seatsPerRow = 4

type Service interface {
	Create(ctx context.Context, req CreateDepartureRequest, createdBy uuid.UUID) (*DepartureResponse, error)
	GetByID(ctx context.Context, id string) (*DepartureResponse, error)
	Update(ctx context.Context, id string, req UpdateDepartureRequest) (*DepartureResponse, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context, query DepartureListQuery) (*PaginatedDepartures, error)
	GetUpcoming(ctx context.Context, limit int) ([]DepartureResponse, error)
	SetCacheService(cacheService cache.Service)

	// DepartureFare returns the per-seat fare in minor units. The reservation
	// flow prices holds through this lookup.
	DepartureFare(ctx context.Context, departureID uuid.UUID) (int64, error)
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

func (s *service) Create(ctx context.Context, req CreateDepartureRequest, createdBy uuid.UUID) (*DepartureResponse, error) {
	departure := &Departure{
		RouteCode:   req.RouteCode,
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartsAt:   req.DepartsAt,
		Capacity:    req.Capacity,
		FarePerSeat: req.FarePerSeat,
		Status:      StatusScheduled,
		CreatedBy:   createdBy,
	}

	err := s.repo.Create(ctx, departure, func(tx *gorm.DB) error {
		labels := generateSeatLabels(req.Capacity)
		seatRows := make([]seats.Seat, 0, len(labels))
		for _, label := range labels {
			seatRows = append(seatRows, seats.Seat{
				DepartureID: departure.ID,
				Label:       label,
				Status:      seats.StatusFree,
			})
		}
		return tx.Create(&seatRows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create departure: %w", err)
	}

	s.invalidateListCache(ctx)

	resp := departure.ToResponse()
	return &resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*DepartureResponse, error) {
	departureID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid departure ID: %w", err)
	}

	cacheKey := constants.BuildDepartureDetailKey(id)
	if s.cacheService != nil {
		var cached DepartureResponse
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			logger.GetDefault().Debug("cache hit for departure detail", "key", cacheKey)
			return &cached, nil
		}
	}

	departure, err := s.repo.GetByID(ctx, departureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("departure not found")
		}
		return nil, fmt.Errorf("failed to get departure: %w", err)
	}

	resp := departure.ToResponse()

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, resp, constants.TTL_DEPARTURE_DETAIL); err != nil {
			logger.GetDefault().Debug("failed to cache departure detail", "error", err)
		}
	}

	return &resp, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateDepartureRequest) (*DepartureResponse, error) {
	departureID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid departure ID: %w", err)
	}

	updates := make(map[string]interface{})
	if req.RouteCode != nil {
		updates["route_code"] = *req.RouteCode
	}
	if req.Origin != nil {
		updates["origin"] = *req.Origin
	}
	if req.Destination != nil {
		updates["destination"] = *req.Destination
	}
	if req.DepartsAt != nil {
		updates["departs_at"] = *req.DepartsAt
	}
	if req.FarePerSeat != nil {
		updates["fare_per_seat"] = *req.FarePerSeat
	}
	if req.Status != nil {
		status := Status(*req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("invalid departure status: %s", *req.Status)
		}
		updates["status"] = status
	}

	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}

	departure, err := s.repo.Update(ctx, departureID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("departure not found")
		}
		return nil, fmt.Errorf("failed to update departure: %w", err)
	}

	s.invalidateDepartureCache(ctx, id)

	resp := departure.ToResponse()
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	departureID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid departure ID: %w", err)
	}

	if _, err := s.repo.GetByID(ctx, departureID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("departure not found")
		}
		return fmt.Errorf("failed to get departure: %w", err)
	}

	err = s.repo.Delete(ctx, departureID, func(tx *gorm.DB) error {
		return tx.Delete(&seats.Seat{}, "departure_id = ?", departureID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete departure: %w", err)
	}

	s.invalidateDepartureCache(ctx, id)
	return nil
}

func (s *service) GetAll(ctx context.Context, query DepartureListQuery) (*PaginatedDepartures, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	// Only unfiltered pages are cached; filtered queries hit the database.
	cacheable := query.RouteCode == "" && query.Origin == "" && query.Status == "" &&
		query.DateFrom == "" && query.DateTo == ""

	cacheKey := constants.BuildDeparturesListKey(query.Page, query.Limit)
	if cacheable && s.cacheService != nil {
		var cached PaginatedDepartures
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			logger.GetDefault().Debug("cache hit for departures list", "key", cacheKey)
			return &cached, nil
		}
	}

	departures, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list departures: %w", err)
	}

	responses := make([]DepartureResponse, 0, len(departures))
	for _, departure := range departures {
		responses = append(responses, departure.ToResponse())
	}

	totalPages := int((totalCount + int64(query.Limit) - 1) / int64(query.Limit))
	result := &PaginatedDepartures{
		Departures: responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}

	if cacheable && s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, result, constants.TTL_DEPARTURES_LIST); err != nil {
			logger.GetDefault().Debug("failed to cache departures list", "error", err)
		}
	}

	return result, nil
}

func (s *service) GetUpcoming(ctx context.Context, limit int) ([]DepartureResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	departures, err := s.repo.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming departures: %w", err)
	}

	responses := make([]DepartureResponse, 0, len(departures))
	for _, departure := range departures {
		responses = append(responses, departure.ToResponse())
	}
	return responses, nil
}

func (s *service) DepartureFare(ctx context.Context, departureID uuid.UUID) (int64, error) {
	departure, err := s.repo.GetByID(ctx, departureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("departure not found")
		}
		return 0, fmt.Errorf("failed to get departure: %w", err)
	}
	if departure.Status != StatusScheduled {
		return 0, fmt.Errorf("departure %s is not open for reservations", departureID)
	}
	return departure.FarePerSeat, nil
}

func (s *service) invalidateDepartureCache(ctx context.Context, id string) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildDepartureDetailKey(id)); err != nil {
		logger.GetDefault().Debug("failed to invalidate departure detail cache", "error", err)
	}
	s.invalidateListCache(ctx)
}

func (s *service) invalidateListCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.CACHE_KEY_DEPARTURES_LIST+"*"); err != nil {
		logger.GetDefault().Debug("failed to invalidate departures list cache", "error", err)
	}
}

// generateSeatLabels produces row-letter labels (1A, 1B, ... 2A) for the
// requested capacity.
func generateSeatLabels(capacity int) []string {
	labels := make([]string, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := i/seatsPerRow + 1
		col := rune('A' + i%seatsPerRow)
		labels = append(labels, fmt.Sprintf("%d%c", row, col))
	}
	return labels
}
