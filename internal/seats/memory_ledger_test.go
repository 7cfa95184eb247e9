package seats

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArenaWithSeats(t *testing.T, count int) (*MemoryLedger, uuid.UUID, []uuid.UUID) {
	t.Helper()

	ledger := NewMemoryLedger()
	departureID := uuid.New()
	seatIDs := make([]uuid.UUID, count)
	for i := range seatIDs {
		seatIDs[i] = uuid.New()
	}
	ledger.Register(departureID, seatIDs...)
	return ledger, departureID, seatIDs
}

func TestTryHoldHappyPath(t *testing.T) {
	ledger, departureID, seatIDs := newArenaWithSeats(t, 3)
	reservationID := uuid.New()

	err := ledger.TryHold(context.Background(), departureID, seatIDs, reservationID)
	require.NoError(t, err)

	for _, id := range seatIDs {
		status, holder, err := ledger.SeatState(departureID, id)
		require.NoError(t, err)
		assert.Equal(t, StatusHeld, status)
		assert.Equal(t, reservationID, holder)
	}
}

func TestTryHoldAllOrNothing(t *testing.T) {
	ledger, departureID, seatIDs := newArenaWithSeats(t, 3)
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, ledger.TryHold(context.Background(), departureID, seatIDs[:1], first))

	// Overlapping request: one seat taken, two free. Nothing may be held.
	err := ledger.TryHold(context.Background(), departureID, seatIDs, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeatUnavailable)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []uuid.UUID{seatIDs[0]}, conflict.SeatIDs)

	for _, id := range seatIDs[1:] {
		status, _, err := ledger.SeatState(departureID, id)
		require.NoError(t, err)
		assert.Equal(t, StatusFree, status)
	}
}

func TestTryHoldValidation(t *testing.T) {
	ledger, departureID, seatIDs := newArenaWithSeats(t, 2)
	reservationID := uuid.New()

	err := ledger.TryHold(context.Background(), departureID, nil, reservationID)
	assert.ErrorIs(t, err, ErrNoSeats)

	err = ledger.TryHold(context.Background(), departureID, []uuid.UUID{seatIDs[0], seatIDs[0]}, reservationID)
	assert.ErrorIs(t, err, ErrDuplicateSeats)

	err = ledger.TryHold(context.Background(), departureID, []uuid.UUID{uuid.New()}, reservationID)
	assert.ErrorIs(t, err, ErrUnknownSeat)

	err = ledger.TryHold(context.Background(), uuid.New(), seatIDs, reservationID)
	assert.ErrorIs(t, err, ErrUnknownSeat)
}

func TestConcurrentTryHoldSingleWinner(t *testing.T) {
	ledger, departureID, seatIDs := newArenaWithSeats(t, 1)

	const contenders = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.TryHold(context.Background(), departureID, seatIDs, uuid.New()); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestReleaseIsHolderMatched(t *testing.T) {
	ledger, departureID, seatIDs := newArenaWithSeats(t, 2)
	owner := uuid.New()
	stranger := uuid.New()

	require.NoError(t, ledger.TryHold(context.Background(), departureID, seatIDs, owner))

	// A release by a non-holder leaves the seats held
	require.NoError(t, ledger.Release(context.Background(), departureID, seatIDs, stranger))
	status, holder, err := ledger.SeatState(departureID, seatIDs[0])
	require.NoError(t, err)
	assert.Equal(t, StatusHeld, status)
	assert.Equal(t, owner, holder)

	require.NoError(t, ledger.Release(context.Background(), departureID, seatIDs, owner))
	status, _, err = ledger.SeatState(departureID, seatIDs[0])
	require.NoError(t, err)
	assert.Equal(t, StatusFree, status)

	// Releasing already-free seats is a no-op
	require.NoError(t, ledger.Release(context.Background(), departureID, seatIDs, owner))
}

func TestFinalizeRequiresMatchingHold(t *testing.T) {
	ledger, departureID, seatIDs := newArenaWithSeats(t, 2)
	owner := uuid.New()

	// Finalizing free seats fails
	err := ledger.Finalize(context.Background(), departureID, seatIDs, owner)
	assert.ErrorIs(t, err, ErrStateMismatch)

	require.NoError(t, ledger.TryHold(context.Background(), departureID, seatIDs, owner))

	// Finalizing someone else's hold fails and changes nothing
	err = ledger.Finalize(context.Background(), departureID, seatIDs, uuid.New())
	assert.ErrorIs(t, err, ErrStateMismatch)
	status, _, err := ledger.SeatState(departureID, seatIDs[0])
	require.NoError(t, err)
	assert.Equal(t, StatusHeld, status)

	require.NoError(t, ledger.Finalize(context.Background(), departureID, seatIDs, owner))
	for _, id := range seatIDs {
		status, _, err := ledger.SeatState(departureID, id)
		require.NoError(t, err)
		assert.Equal(t, StatusSold, status)
	}
}

func TestHoldAfterReleaseSucceeds(t *testing.T) {
	ledger, departureID, seatIDs := newArenaWithSeats(t, 1)
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, ledger.TryHold(context.Background(), departureID, seatIDs, first))
	require.NoError(t, ledger.Release(context.Background(), departureID, seatIDs, first))
	require.NoError(t, ledger.TryHold(context.Background(), departureID, seatIDs, second))

	_, holder, err := ledger.SeatState(departureID, seatIDs[0])
	require.NoError(t, err)
	assert.Equal(t, second, holder)
}
