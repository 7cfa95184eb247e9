package boarding

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ridepass/internal/seats"
	"ridepass/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// scanSeatRepo implements just enough of the seat repository to drive scans
type scanSeatRepo struct {
	status map[uuid.UUID]seats.Status
	counts map[uuid.UUID]int
}

func newScanSeatRepo() *scanSeatRepo {
	return &scanSeatRepo{
		status: make(map[uuid.UUID]seats.Status),
		counts: make(map[uuid.UUID]int),
	}
}

func (r *scanSeatRepo) CreateSeats(ctx context.Context, rows []seats.Seat) error { return nil }
func (r *scanSeatRepo) GetSeatByID(ctx context.Context, id uuid.UUID) (*seats.Seat, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *scanSeatRepo) GetSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) ([]seats.Seat, error) {
	return nil, nil
}
func (r *scanSeatRepo) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]seats.Seat, error) {
	return nil, nil
}
func (r *scanSeatRepo) GetSeatsByHolder(ctx context.Context, reservationID uuid.UUID) ([]seats.Seat, error) {
	return nil, nil
}
func (r *scanSeatRepo) DeleteSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) error {
	return nil
}
func (r *scanSeatRepo) CountFreeSeats(ctx context.Context, departureID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *scanSeatRepo) RecordScan(ctx context.Context, seatID uuid.UUID, scanLimit int, now time.Time) (int, error) {
	status, ok := r.status[seatID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if status != seats.StatusSold {
		return 0, fmt.Errorf("seat %s: %w", seatID, seats.ErrSeatNotSold)
	}
	if r.counts[seatID] >= scanLimit {
		return 0, fmt.Errorf("seat %s: %w", seatID, seats.ErrScanLimitReached)
	}
	r.counts[seatID]++
	return r.counts[seatID], nil
}

type scanHarness struct {
	service     Service
	tokens      *TokenService
	repo        *scanSeatRepo
	seatID      uuid.UUID
	departureID uuid.UUID
}

func newScanHarness(t *testing.T) *scanHarness {
	t.Helper()

	tokens, err := NewTokenService("scan-test-secret")
	require.NoError(t, err)

	repo := newScanSeatRepo()
	seatID := uuid.New()
	repo.status[seatID] = seats.StatusSold

	cfg := &config.Config{
		Boarding: config.BoardingConfig{ScanLimit: 2},
	}

	return &scanHarness{
		service:     NewService(tokens, repo, cfg),
		tokens:      tokens,
		repo:        repo,
		seatID:      seatID,
		departureID: uuid.New(),
	}
}

func (h *scanHarness) issue(t *testing.T) string {
	t.Helper()
	token, err := h.tokens.Issue(h.seatID, h.departureID, "3C", time.Now())
	require.NoError(t, err)
	return token
}

func TestScanBoardsThenDisembarks(t *testing.T) {
	h := newScanHarness(t)
	token := h.issue(t)
	req := ScanRequest{Token: token, DepartureID: h.departureID.String()}

	first, err := h.service.Scan(context.Background(), req, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeBoarded, first.Outcome)
	assert.Equal(t, 1, first.ScanCount)
	assert.Equal(t, "3C", first.SeatNumber)

	second, err := h.service.Scan(context.Background(), req, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDisembarked, second.Outcome)
	assert.Equal(t, 2, second.ScanCount)

	// The third scan is past the limit
	_, err = h.service.Scan(context.Background(), req, "10.0.0.1")
	assert.ErrorIs(t, err, ErrScanRejected)
}

func TestScanRejectsWrongDeparture(t *testing.T) {
	h := newScanHarness(t)
	token := h.issue(t)

	_, err := h.service.Scan(context.Background(), ScanRequest{
		Token:       token,
		DepartureID: uuid.NewString(),
	}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrWrongDeparture)
}

func TestScanRejectsUnsoldSeat(t *testing.T) {
	h := newScanHarness(t)
	h.repo.status[h.seatID] = seats.StatusHeld
	token := h.issue(t)

	_, err := h.service.Scan(context.Background(), ScanRequest{
		Token:       token,
		DepartureID: h.departureID.String(),
	}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrScanRejected)
}

func TestScanRejectsForgedToken(t *testing.T) {
	h := newScanHarness(t)

	forger, err := NewTokenService("attacker-secret")
	require.NoError(t, err)
	token, err := forger.Issue(h.seatID, h.departureID, "3C", time.Now())
	require.NoError(t, err)

	_, err = h.service.Scan(context.Background(), ScanRequest{
		Token:       token,
		DepartureID: h.departureID.String(),
	}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	// The forged scan never touched the seat
	assert.Equal(t, 0, h.repo.counts[h.seatID])
}
