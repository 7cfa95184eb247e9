package seats

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Ledger errors. ConflictError wraps ErrSeatUnavailable so callers can match
// with errors.Is while still reading the conflicting seat list.
var (
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrStateMismatch   = errors.New("seat state mismatch")
	ErrUnknownSeat     = errors.New("seat does not belong to departure")
	ErrNoSeats         = errors.New("no seats specified")
	ErrDuplicateSeats  = errors.New("duplicate seat ids")
)

// ConflictError names the seats that were not free at evaluation time
type ConflictError struct {
	SeatIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seats unavailable: %v", e.SeatIDs)
}

func (e *ConflictError) Unwrap() error {
	return ErrSeatUnavailable
}

// Ledger is the per-departure authoritative record of seat occupancy.
// All three operations are atomic with respect to each other for the same
// seat: two concurrent TryHold calls on overlapping seat sets never both
// succeed.
type Ledger interface {
	// TryHold transitions every requested seat FREE -> HELD for the given
	// reservation, all-or-nothing. If any seat is unavailable no seat is
	// held and a *ConflictError names the offenders.
	TryHold(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error

	// Release transitions HELD -> FREE only for seats whose holder matches
	// the reservation. Releasing an already-free seat is a no-op.
	Release(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error

	// Finalize transitions HELD -> SOLD. Fails with ErrStateMismatch if any
	// seat's holder does not match the reservation.
	Finalize(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error
}

// normalizeSeatIDs validates the request shape shared by all ledger
// implementations: non-empty, no duplicates.
func normalizeSeatIDs(seatIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(seatIDs) == 0 {
		return nil, ErrNoSeats
	}
	seen := make(map[uuid.UUID]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSeats, id)
		}
		seen[id] = struct{}{}
	}
	return seatIDs, nil
}
