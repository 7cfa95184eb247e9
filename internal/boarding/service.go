package boarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridepass/internal/seats"
	"ridepass/internal/shared/config"
	"ridepass/pkg/logger"

	"gorm.io/gorm"
)

var (
	ErrWrongDeparture = errors.New("token was issued for a different departure")
	ErrScanRejected   = errors.New("scan rejected")
)

// Scan outcomes. The first valid scan boards the passenger, the second marks
// them off the vehicle, anything past the limit is rejected.
const (
	OutcomeBoarded     = "BOARDED"
	OutcomeDisembarked = "DISEMBARKED"
)

type ScanRequest struct {
	Token       string `json:"token" binding:"required"`
	DepartureID string `json:"departure_id" binding:"required,uuid"`
}

type ScanResponse struct {
	Outcome    string    `json:"outcome"`
	SeatID     string    `json:"seat_id"`
	SeatNumber string    `json:"seat_number"`
	ScanCount  int       `json:"scan_count"`
	ScannedAt  time.Time `json:"scanned_at"`
}

type Service interface {
	// Scan verifies a boarding token and records the scan against the seat.
	Scan(ctx context.Context, req ScanRequest, clientIP string) (*ScanResponse, error)
}

type service struct {
	tokens   *TokenService
	seatRepo seats.Repository
	config   *config.Config
	now      func() time.Time
}

func NewService(tokens *TokenService, seatRepo seats.Repository, cfg *config.Config) Service {
	return &service{
		tokens:   tokens,
		seatRepo: seatRepo,
		config:   cfg,
		now:      time.Now,
	}
}

func (s *service) Scan(ctx context.Context, req ScanRequest, clientIP string) (*ScanResponse, error) {
	claims, err := s.tokens.Verify(req.Token)
	if err != nil {
		logger.GetDefault().LogTokenRejected(ctx, err.Error(), clientIP)
		return nil, err
	}

	if claims.DepartureID.String() != req.DepartureID {
		logger.GetDefault().LogTokenRejected(ctx, "departure mismatch", clientIP)
		return nil, ErrWrongDeparture
	}

	now := s.now()
	count, err := s.seatRepo.RecordScan(ctx, claims.SeatID, s.config.Boarding.ScanLimit, now)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			logger.GetDefault().LogTokenRejected(ctx, "unknown seat", clientIP)
			return nil, fmt.Errorf("%w: unknown seat", ErrScanRejected)
		case errors.Is(err, seats.ErrSeatNotSold):
			logger.GetDefault().LogTokenRejected(ctx, "seat not sold", clientIP)
			return nil, fmt.Errorf("%w: seat is not sold", ErrScanRejected)
		case errors.Is(err, seats.ErrScanLimitReached):
			logger.GetDefault().LogTokenRejected(ctx, "scan limit reached", clientIP)
			return nil, fmt.Errorf("%w: scan limit reached", ErrScanRejected)
		}
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}

	outcome := OutcomeBoarded
	if count > 1 {
		outcome = OutcomeDisembarked
	}

	return &ScanResponse{
		Outcome:    outcome,
		SeatID:     claims.SeatID.String(),
		SeatNumber: claims.SeatNumber,
		ScanCount:  count,
		ScannedAt:  now,
	}, nil
}
