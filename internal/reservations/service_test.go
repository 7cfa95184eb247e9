package reservations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ridepass/internal/seats"
	"ridepass/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory fakes for the service's collaborators. The ledger itself is the
// real in-memory implementation, so hold semantics are exercised for real.

type fakeRepo struct {
	mu            sync.Mutex
	reservations  map[uuid.UUID]*Reservation
	tokenSetCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reservations: make(map[uuid.UUID]*Reservation)}
}

func (r *fakeRepo) Create(ctx context.Context, reservation *Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *reservation
	stored.Seats = append([]ReservationSeat(nil), reservation.Seats...)
	r.reservations[reservation.ID] = &stored
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *stored
	out.Seats = append([]ReservationSeat(nil), stored.Seats...)
	return &out, nil
}

func (r *fakeRepo) GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Reservation
	for _, stored := range r.reservations {
		if stored.UserID == userID {
			out = append(out, *stored)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, extra map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reservations[id]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = to
	if v, ok := extra["confirmed_at"].(time.Time); ok {
		stored.ConfirmedAt = &v
	}
	if v, ok := extra["cancelled_at"].(time.Time); ok {
		stored.CancelledAt = &v
	}
	return true, nil
}

func (r *fakeRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Reservation
	for _, stored := range r.reservations {
		if stored.IsOverdue(now) && len(out) < limit {
			copied := *stored
			copied.Seats = append([]ReservationSeat(nil), stored.Seats...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) SetSeatTokens(ctx context.Context, reservationID uuid.UUID, tokens map[uuid.UUID]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokenSetCalls++
	stored, ok := r.reservations[reservationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range stored.Seats {
		if token, ok := tokens[stored.Seats[i].SeatID]; ok {
			stored.Seats[i].BoardingToken = token
		}
	}
	return nil
}

type fakeSeatRepo struct {
	seats map[uuid.UUID]seats.Seat
}

func (r *fakeSeatRepo) CreateSeats(ctx context.Context, rows []seats.Seat) error { return nil }
func (r *fakeSeatRepo) GetSeatByID(ctx context.Context, id uuid.UUID) (*seats.Seat, error) {
	seat, ok := r.seats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &seat, nil
}
func (r *fakeSeatRepo) GetSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) ([]seats.Seat, error) {
	return nil, nil
}
func (r *fakeSeatRepo) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]seats.Seat, error) {
	out := make([]seats.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		if seat, ok := r.seats[id]; ok {
			out = append(out, seat)
		}
	}
	return out, nil
}
func (r *fakeSeatRepo) GetSeatsByHolder(ctx context.Context, reservationID uuid.UUID) ([]seats.Seat, error) {
	return nil, nil
}
func (r *fakeSeatRepo) DeleteSeatsByDepartureID(ctx context.Context, departureID uuid.UUID) error {
	return nil
}
func (r *fakeSeatRepo) CountFreeSeats(ctx context.Context, departureID uuid.UUID) (int64, error) {
	return 0, nil
}
func (r *fakeSeatRepo) RecordScan(ctx context.Context, seatID uuid.UUID, scanLimit int, now time.Time) (int, error) {
	return 0, nil
}

type fakeFares struct {
	fare int64
	err  error
}

func (f *fakeFares) DepartureFare(ctx context.Context, departureID uuid.UUID) (int64, error) {
	return f.fare, f.err
}

type fakeCoupons struct {
	discount     int64
	couponID     uuid.UUID
	quoteErr     error
	consumeErr   error
	consumeCalls int
}

func (f *fakeCoupons) Quote(ctx context.Context, code string, orderAmount int64, now time.Time) (int64, uuid.UUID, error) {
	if f.quoteErr != nil {
		return 0, uuid.Nil, f.quoteErr
	}
	return f.discount, f.couponID, nil
}

func (f *fakeCoupons) ConsumeRedemption(ctx context.Context, couponID uuid.UUID) error {
	f.consumeCalls++
	return f.consumeErr
}

type fakeTokens struct {
	issued int
}

func (f *fakeTokens) Issue(seatID, departureID uuid.UUID, seatLabel string, issuedAt time.Time) (string, error) {
	f.issued++
	return fmt.Sprintf("token-%s-%s", seatLabel, seatID), nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Publish(ctx context.Context, eventType string, entityID, userID uuid.UUID, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

type harness struct {
	service     *service
	repo        *fakeRepo
	ledger      *seats.MemoryLedger
	coupons     *fakeCoupons
	tokens      *fakeTokens
	notifier    *fakeNotifier
	departureID uuid.UUID
	seatIDs     []uuid.UUID
	userID      uuid.UUID
	now         time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	departureID := uuid.New()
	seatIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	labels := []string{"1A", "1B", "1C"}

	ledger := seats.NewMemoryLedger()
	ledger.Register(departureID, seatIDs...)

	seatRepo := &fakeSeatRepo{seats: make(map[uuid.UUID]seats.Seat)}
	for i, id := range seatIDs {
		seatRepo.seats[id] = seats.Seat{ID: id, DepartureID: departureID, Label: labels[i], Status: seats.StatusFree}
	}

	repo := newFakeRepo()
	coupons := &fakeCoupons{couponID: uuid.New()}
	tokens := &fakeTokens{}
	notifier := &fakeNotifier{}

	cfg := &config.Config{
		Reservation: config.ReservationConfig{
			HoldWindow:     15 * time.Minute,
			SweepInterval:  time.Minute,
			SweepBatchSize: 100,
		},
	}

	svc := NewService(Deps{
		Repo:     repo,
		Ledger:   ledger,
		SeatRepo: seatRepo,
		Fares:    &fakeFares{fare: 85000},
		Coupons:  coupons,
		Tokens:   tokens,
		Notifier: notifier,
	}, cfg).(*service)

	now := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return now }

	return &harness{
		service:     svc,
		repo:        repo,
		ledger:      ledger,
		coupons:     coupons,
		tokens:      tokens,
		notifier:    notifier,
		departureID: departureID,
		seatIDs:     seatIDs,
		userID:      uuid.New(),
		now:         now,
	}
}

func (h *harness) createRequest(seatCount int, couponCode string) CreateReservationRequest {
	ids := make([]string, 0, seatCount)
	for _, id := range h.seatIDs[:seatCount] {
		ids = append(ids, id.String())
	}
	return CreateReservationRequest{
		DepartureID: h.departureID.String(),
		SeatIDs:     ids,
		CouponCode:  couponCode,
	}
}

func TestCreateReservation(t *testing.T) {
	h := newHarness(t)

	resp, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, ""))
	require.NoError(t, err)

	assert.Equal(t, StatusPendingHold.String(), resp.Status)
	assert.Equal(t, 2, resp.SeatCount)
	assert.Equal(t, int64(170000), resp.BaseAmount)
	assert.Equal(t, int64(0), resp.DiscountAmount)
	assert.Equal(t, int64(170000), resp.TotalAmount)
	assert.True(t, resp.HoldExpiresAt.Equal(h.now.Add(15*time.Minute)))
	require.Len(t, resp.Seats, 2)
	assert.Empty(t, resp.Seats[0].BoardingToken)

	for _, id := range h.seatIDs[:2] {
		status, holder, err := h.ledger.SeatState(h.departureID, id)
		require.NoError(t, err)
		assert.Equal(t, seats.StatusHeld, status)
		assert.Equal(t, resp.ID, holder.String())
	}

	assert.Equal(t, []string{EventReservationCreated}, h.notifier.events)
}

func TestCreateReservationWithCouponQuote(t *testing.T) {
	h := newHarness(t)
	h.coupons.discount = 17000

	resp, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, "SAVE10"))
	require.NoError(t, err)

	assert.Equal(t, int64(170000), resp.BaseAmount)
	assert.Equal(t, int64(17000), resp.DiscountAmount)
	assert.Equal(t, int64(153000), resp.TotalAmount)

	// Quoting must not consume the usage slot
	assert.Equal(t, 0, h.coupons.consumeCalls)
}

func TestCreateReservationSeatConflict(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, ""))
	require.NoError(t, err)

	_, err = h.service.Create(context.Background(), uuid.New(), h.createRequest(3, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, seats.ErrSeatUnavailable)

	var conflict *seats.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Len(t, conflict.SeatIDs, 2)

	// The unconflicted seat stays free for other buyers
	status, _, err := h.ledger.SeatState(h.departureID, h.seatIDs[2])
	require.NoError(t, err)
	assert.Equal(t, seats.StatusFree, status)
}

func TestCreateReservationCouponRejectionRollsBackHold(t *testing.T) {
	h := newHarness(t)
	h.coupons.quoteErr = errors.New("coupon expired")

	_, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, "EXPIRED5"))
	require.Error(t, err)

	for _, id := range h.seatIDs[:2] {
		status, _, err := h.ledger.SeatState(h.departureID, id)
		require.NoError(t, err)
		assert.Equal(t, seats.StatusFree, status)
	}
}

func TestConfirmReservation(t *testing.T) {
	h := newHarness(t)
	h.coupons.discount = 17000

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, "SAVE10"))
	require.NoError(t, err)
	reservationID := uuid.MustParse(created.ID)

	resp, err := h.service.Confirm(context.Background(), reservationID, h.userID)
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed.String(), resp.Status)
	require.NotNil(t, resp.ConfirmedAt)
	require.Len(t, resp.Seats, 2)
	for _, seat := range resp.Seats {
		assert.NotEmpty(t, seat.BoardingToken)
	}

	for _, id := range h.seatIDs[:2] {
		status, _, err := h.ledger.SeatState(h.departureID, id)
		require.NoError(t, err)
		assert.Equal(t, seats.StatusSold, status)
	}

	assert.Equal(t, 1, h.coupons.consumeCalls)
	assert.Equal(t, 2, h.tokens.issued)
}

func TestConfirmIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.coupons.discount = 17000

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, "SAVE10"))
	require.NoError(t, err)
	reservationID := uuid.MustParse(created.ID)

	_, err = h.service.Confirm(context.Background(), reservationID, h.userID)
	require.NoError(t, err)

	resp, err := h.service.Confirm(context.Background(), reservationID, h.userID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed.String(), resp.Status)

	// Side effects ran exactly once
	assert.Equal(t, 1, h.coupons.consumeCalls)
	assert.Equal(t, 2, h.tokens.issued)
	assert.Equal(t, 1, h.repo.tokenSetCalls)
}

func TestConfirmAfterExpiry(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(1, ""))
	require.NoError(t, err)
	reservationID := uuid.MustParse(created.ID)

	stored, err := h.repo.GetByID(context.Background(), reservationID)
	require.NoError(t, err)
	won, err := h.service.ExpireIfOverdue(context.Background(), stored, h.now.Add(16*time.Minute))
	require.NoError(t, err)
	require.True(t, won)

	_, err = h.service.Confirm(context.Background(), reservationID, h.userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var transition *TransitionError
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, StatusExpired, transition.Current)

	// The expired hold released its seat
	status, _, err := h.ledger.SeatState(h.departureID, h.seatIDs[0])
	require.NoError(t, err)
	assert.Equal(t, seats.StatusFree, status)
	assert.Equal(t, 0, h.tokens.issued)
}

func TestConfirmPastDeadlineExpiresHold(t *testing.T) {
	h := newHarness(t)
	h.coupons.discount = 17000

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, "SAVE10"))
	require.NoError(t, err)
	reservationID := uuid.MustParse(created.ID)

	// The payment callback lands after the hold window but before any sweep
	h.service.now = func() time.Time { return h.now.Add(30 * time.Minute) }

	_, err = h.service.Confirm(context.Background(), reservationID, h.userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var transition *TransitionError
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, StatusExpired, transition.Current)

	// The overdue hold was expired in place, not confirmed
	stored, err := h.repo.GetByID(context.Background(), reservationID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)

	for _, id := range h.seatIDs[:2] {
		status, _, err := h.ledger.SeatState(h.departureID, id)
		require.NoError(t, err)
		assert.Equal(t, seats.StatusFree, status)
	}
	assert.Equal(t, 0, h.tokens.issued)
	assert.Equal(t, 0, h.coupons.consumeCalls)
}

func TestCancelReservation(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, ""))
	require.NoError(t, err)
	reservationID := uuid.MustParse(created.ID)

	require.NoError(t, h.service.Cancel(context.Background(), reservationID, h.userID))

	for _, id := range h.seatIDs[:2] {
		status, _, err := h.ledger.SeatState(h.departureID, id)
		require.NoError(t, err)
		assert.Equal(t, seats.StatusFree, status)
	}

	// A repeat cancel reports the terminal state instead of succeeding
	err = h.service.Cancel(context.Background(), reservationID, h.userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var transition *TransitionError
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, StatusCancelled, transition.Current)
}

func TestCancelAfterConfirmFails(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(1, ""))
	require.NoError(t, err)
	reservationID := uuid.MustParse(created.ID)

	_, err = h.service.Confirm(context.Background(), reservationID, h.userID)
	require.NoError(t, err)

	err = h.service.Cancel(context.Background(), reservationID, h.userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var transition *TransitionError
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, StatusConfirmed, transition.Current)
}

func TestOwnershipChecks(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(1, ""))
	require.NoError(t, err)
	reservationID := uuid.MustParse(created.ID)
	stranger := uuid.New()

	_, err = h.service.Confirm(context.Background(), reservationID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = h.service.Cancel(context.Background(), reservationID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = h.service.GetByID(context.Background(), reservationID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestConfirmUnknownReservation(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Confirm(context.Background(), uuid.New(), h.userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpireIfOverdueNotYetDue(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(1, ""))
	require.NoError(t, err)

	stored, err := h.repo.GetByID(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)

	won, err := h.service.ExpireIfOverdue(context.Background(), stored, h.now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.False(t, won)

	status, _, err := h.ledger.SeatState(h.departureID, h.seatIDs[0])
	require.NoError(t, err)
	assert.Equal(t, seats.StatusHeld, status)
}

func TestSweepExpired(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, ""))
	require.NoError(t, err)

	// Advance the clock past the hold window and sweep
	h.service.now = func() time.Time { return h.now.Add(20 * time.Minute) }

	expired, err := h.service.SweepExpired(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	stored, err := h.repo.GetByID(context.Background(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)

	for _, id := range h.seatIDs[:2] {
		status, _, err := h.ledger.SeatState(h.departureID, id)
		require.NoError(t, err)
		assert.Equal(t, seats.StatusFree, status)
	}

	// A second sweep finds nothing
	expired, err = h.service.SweepExpired(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestSweepSkipsFreshHolds(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Create(context.Background(), h.userID, h.createRequest(1, ""))
	require.NoError(t, err)

	expired, err := h.service.SweepExpired(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)

	status, _, err := h.ledger.SeatState(h.departureID, h.seatIDs[0])
	require.NoError(t, err)
	assert.Equal(t, seats.StatusHeld, status)
}

func TestConfirmToleratesExhaustedCouponSlot(t *testing.T) {
	h := newHarness(t)
	h.coupons.discount = 17000
	h.coupons.consumeErr = errors.New("usage limit exhausted")

	created, err := h.service.Create(context.Background(), h.userID, h.createRequest(2, "SAVE10"))
	require.NoError(t, err)

	// The quoted discount stands even when the slot is gone at confirm time
	resp, err := h.service.Confirm(context.Background(), uuid.MustParse(created.ID), h.userID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed.String(), resp.Status)
	assert.Equal(t, int64(153000), resp.TotalAmount)
}
