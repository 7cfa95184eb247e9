package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSeatNotSold      = errors.New("seat is not sold")
	ErrScanLimitReached = errors.New("seat scan limit reached")
)

type Repository interface {
	// Seat CRUD
	CreateSeats(ctx context.Context, seats []Seat) error
	GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error)
	GetSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) ([]Seat, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	GetSeatsByHolder(ctx context.Context, reservationID uuid.UUID) ([]Seat, error)
	DeleteSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) error

	// Availability
	CountFreeSeats(ctx context.Context, departureID uuid.UUID) (int64, error)

	// Boarding scans
	RecordScan(ctx context.Context, seatID uuid.UUID, scanLimit int, now time.Time) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// SEAT CRUD

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) GetSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("departure_id = ?", departureID).
		Order("label ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("id IN ?", seatIDs).
		Order("label ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByHolder(ctx context.Context, reservationID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("holder_id = ?", reservationID).
		Order("label ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) DeleteSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Seat{}, "departure_id = ?", departureID).Error
}

// AVAILABILITY

func (r *repository) CountFreeSeats(ctx context.Context, departureID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("departure_id = ? AND status = ?", departureID, StatusFree).
		Count(&count).Error
	return count, err
}

// BOARDING SCANS

// RecordScan bumps the seat's scan counter under a row lock and returns the
// new count. Only SOLD seats may be scanned, and never past the scan limit.
func (r *repository) RecordScan(ctx context.Context, seatID uuid.UUID, scanLimit int, now time.Time) (int, error) {
	var newCount int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seat Seat
		if err := tx.
			Where("id = ?", seatID).
			Set("gorm:query_option", "FOR UPDATE").
			First(&seat).Error; err != nil {
			return err
		}

		if seat.Status != StatusSold {
			return fmt.Errorf("seat %s: %w", seatID, ErrSeatNotSold)
		}
		if seat.ScanCount >= scanLimit {
			return fmt.Errorf("seat %s already scanned %d times: %w", seatID, seat.ScanCount, ErrScanLimitReached)
		}

		newCount = seat.ScanCount + 1
		return tx.Model(&Seat{}).
			Where("id = ?", seatID).
			Updates(map[string]interface{}{
				"scan_count":   newCount,
				"last_scan_at": now,
				"updated_at":   now,
			}).Error
	})
	if err != nil {
		return 0, err
	}

	return newCount, nil
}
