package seats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormLedger is the production Ledger backed by Postgres row-level locking.
// Every operation locks the requested seat rows FOR UPDATE inside one
// transaction, in a deterministic order to avoid lock-order deadlocks.
type gormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates the Postgres-backed seat ledger
func NewGormLedger(db *gorm.DB) Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) TryHold(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	seatIDs, err := normalizeSeatIDs(seatIDs)
	if err != nil {
		return err
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seats, err := lockSeats(tx, departureID, seatIDs)
		if err != nil {
			return err
		}

		var conflicts []uuid.UUID
		for _, seat := range seats {
			if seat.Status != StatusFree {
				conflicts = append(conflicts, seat.ID)
			}
		}
		if len(conflicts) > 0 {
			return &ConflictError{SeatIDs: conflicts}
		}

		return tx.Model(&Seat{}).
			Where("departure_id = ? AND id IN ?", departureID, seatIDs).
			Updates(map[string]interface{}{
				"status":     StatusHeld,
				"holder_id":  reservationID,
				"updated_at": time.Now(),
			}).Error
	})
}

func (l *gormLedger) Release(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	seatIDs, err := normalizeSeatIDs(seatIDs)
	if err != nil {
		return err
	}

	// Holder-matched conditional update; seats already free (or owned by a
	// different reservation) are simply not touched.
	return l.db.WithContext(ctx).Model(&Seat{}).
		Where("departure_id = ? AND id IN ? AND status = ? AND holder_id = ?",
			departureID, seatIDs, StatusHeld, reservationID).
		Updates(map[string]interface{}{
			"status":     StatusFree,
			"holder_id":  nil,
			"updated_at": time.Now(),
		}).Error
}

func (l *gormLedger) Finalize(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	seatIDs, err := normalizeSeatIDs(seatIDs)
	if err != nil {
		return err
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seats, err := lockSeats(tx, departureID, seatIDs)
		if err != nil {
			return err
		}

		for _, seat := range seats {
			if !seat.HeldBy(reservationID) {
				return fmt.Errorf("seat %s not held by reservation %s: %w",
					seat.ID, reservationID, ErrStateMismatch)
			}
		}

		return tx.Model(&Seat{}).
			Where("departure_id = ? AND id IN ?", departureID, seatIDs).
			Updates(map[string]interface{}{
				"status":     StatusSold,
				"updated_at": time.Now(),
			}).Error
	})
}

// lockSeats loads the requested seat rows FOR UPDATE and verifies that every
// requested seat belongs to the departure.
func lockSeats(tx *gorm.DB, departureID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := tx.
		Where("departure_id = ? AND id IN ?", departureID, seatIDs).
		Order("id").
		Set("gorm:query_option", "FOR UPDATE").
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock seats: %w", err)
	}

	if len(seats) != len(seatIDs) {
		known := make(map[uuid.UUID]struct{}, len(seats))
		for _, seat := range seats {
			known[seat.ID] = struct{}{}
		}
		for _, id := range seatIDs {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownSeat, id)
			}
		}
	}

	return seats, nil
}
