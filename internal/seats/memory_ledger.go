package seats

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryLedger is an in-memory seat ledger guarded by one mutex per
// departure. It honors the same atomicity contract as the Postgres ledger
// and backs local development and tests where no database is available.
type MemoryLedger struct {
	mu         sync.RWMutex
	departures map[uuid.UUID]*departureArena
}

type departureArena struct {
	mu    sync.Mutex
	seats map[uuid.UUID]*seatSlot
}

type seatSlot struct {
	status Status
	holder uuid.UUID
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		departures: make(map[uuid.UUID]*departureArena),
	}
}

// Register adds a departure and its seats to the arena, all FREE
func (l *MemoryLedger) Register(departureID uuid.UUID, seatIDs ...uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	arena, ok := l.departures[departureID]
	if !ok {
		arena = &departureArena{seats: make(map[uuid.UUID]*seatSlot)}
		l.departures[departureID] = arena
	}
	for _, id := range seatIDs {
		arena.seats[id] = &seatSlot{status: StatusFree}
	}
}

func (l *MemoryLedger) arena(departureID uuid.UUID) (*departureArena, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	arena, ok := l.departures[departureID]
	if !ok {
		return nil, fmt.Errorf("%w: departure %s", ErrUnknownSeat, departureID)
	}
	return arena, nil
}

func (l *MemoryLedger) TryHold(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	seatIDs, err := normalizeSeatIDs(seatIDs)
	if err != nil {
		return err
	}
	arena, err := l.arena(departureID)
	if err != nil {
		return err
	}

	arena.mu.Lock()
	defer arena.mu.Unlock()

	var conflicts []uuid.UUID
	for _, id := range seatIDs {
		slot, ok := arena.seats[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSeat, id)
		}
		if slot.status != StatusFree {
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{SeatIDs: conflicts}
	}

	for _, id := range seatIDs {
		arena.seats[id].status = StatusHeld
		arena.seats[id].holder = reservationID
	}
	return nil
}

func (l *MemoryLedger) Release(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	seatIDs, err := normalizeSeatIDs(seatIDs)
	if err != nil {
		return err
	}
	arena, err := l.arena(departureID)
	if err != nil {
		return err
	}

	arena.mu.Lock()
	defer arena.mu.Unlock()

	for _, id := range seatIDs {
		slot, ok := arena.seats[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSeat, id)
		}
		if slot.status == StatusHeld && slot.holder == reservationID {
			slot.status = StatusFree
			slot.holder = uuid.Nil
		}
	}
	return nil
}

func (l *MemoryLedger) Finalize(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	seatIDs, err := normalizeSeatIDs(seatIDs)
	if err != nil {
		return err
	}
	arena, err := l.arena(departureID)
	if err != nil {
		return err
	}

	arena.mu.Lock()
	defer arena.mu.Unlock()

	for _, id := range seatIDs {
		slot, ok := arena.seats[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSeat, id)
		}
		if slot.status != StatusHeld || slot.holder != reservationID {
			return fmt.Errorf("seat %s not held by reservation %s: %w", id, reservationID, ErrStateMismatch)
		}
	}

	for _, id := range seatIDs {
		arena.seats[id].status = StatusSold
	}
	return nil
}

// SeatState returns the current status and holder of a seat, for inspection
func (l *MemoryLedger) SeatState(departureID, seatID uuid.UUID) (Status, uuid.UUID, error) {
	arena, err := l.arena(departureID)
	if err != nil {
		return "", uuid.Nil, err
	}

	arena.mu.Lock()
	defer arena.mu.Unlock()

	slot, ok := arena.seats[seatID]
	if !ok {
		return "", uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownSeat, seatID)
	}
	return slot.status, slot.holder, nil
}
