package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridepass/internal/seats"
	"ridepass/internal/shared/config"
	"ridepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("reservation not found")
	ErrInvalidTransition = errors.New("invalid reservation transition")
	ErrNotOwner          = errors.New("reservation belongs to a different user")
)

// TransitionError reports a conditional transition that lost because the row
// was already in another state. Callers branch on Current; the payment
// reconciler uses it to spot late completions against expired holds.
type TransitionError struct {
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("reservation is %s: %s", e.Current, ErrInvalidTransition)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Event names published on lifecycle transitions
const (
	EventReservationCreated   = "RESERVATION_CREATED"
	EventReservationConfirmed = "RESERVATION_CONFIRMED"
	EventReservationExpired   = "RESERVATION_EXPIRED"
	EventReservationCancelled = "RESERVATION_CANCELLED"
)

// FareCatalog resolves the per-seat fare for a departure
type FareCatalog interface {
	DepartureFare(ctx context.Context, departureID uuid.UUID) (int64, error)
}

// CouponRedeemer quotes discounts at hold time and consumes a usage slot at
// confirmation time.
type CouponRedeemer interface {
	Quote(ctx context.Context, code string, orderAmount int64, now time.Time) (int64, uuid.UUID, error)
	ConsumeRedemption(ctx context.Context, couponID uuid.UUID) error
}

// TokenIssuer mints boarding credentials for confirmed seats
type TokenIssuer interface {
	Issue(seatID, departureID uuid.UUID, seatLabel string, issuedAt time.Time) (string, error)
}

// HoldGuard is the optional Redis fast path in front of the seat ledger
type HoldGuard interface {
	Hold(ctx context.Context, seatIDs []uuid.UUID, reservationID uuid.UUID, ttl time.Duration) error
	Release(ctx context.Context, seatIDs []uuid.UUID, reservationID uuid.UUID) (int, error)
}

// Notifier publishes lifecycle events; implementations must tolerate being
// called on a hot path and never block the caller on delivery.
type Notifier interface {
	Publish(ctx context.Context, eventType string, entityID, userID uuid.UUID, payload map[string]interface{})
}

// SeatMapInvalidator drops the cached seat map after a ledger transition
type SeatMapInvalidator interface {
	InvalidateSeatMap(ctx context.Context, departureID uuid.UUID)
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error)
	Confirm(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*ReservationResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*ReservationResponse, error)
	GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) (*PaginatedReservations, error)

	// ConfirmInternal runs the confirm transition without an ownership check.
	// Payment callbacks use it since the gateway acts on the buyer's behalf.
	ConfirmInternal(ctx context.Context, id uuid.UUID) (*ReservationResponse, error)
	CancelInternal(ctx context.Context, id uuid.UUID) error

	// ExpireIfOverdue races the confirm path for a pending reservation whose
	// hold window lapsed. Losing the race is a successful no-op.
	ExpireIfOverdue(ctx context.Context, reservation *Reservation, now time.Time) (bool, error)
	SweepExpired(ctx context.Context, batchSize int) (int, error)
}

type service struct {
	repo        Repository
	ledger      seats.Ledger
	seatRepo    seats.Repository
	guard       HoldGuard
	fares       FareCatalog
	coupons     CouponRedeemer
	tokens      TokenIssuer
	notifier    Notifier
	invalidator SeatMapInvalidator
	config      *config.Config
	now         func() time.Time
}

// Deps bundles the collaborators the reservation service drives. Guard,
// notifier, and invalidator are optional; the rest are required.
type Deps struct {
	Repo        Repository
	Ledger      seats.Ledger
	SeatRepo    seats.Repository
	Guard       HoldGuard
	Fares       FareCatalog
	Coupons     CouponRedeemer
	Tokens      TokenIssuer
	Notifier    Notifier
	Invalidator SeatMapInvalidator
}

func NewService(deps Deps, cfg *config.Config) Service {
	return &service{
		repo:        deps.Repo,
		ledger:      deps.Ledger,
		seatRepo:    deps.SeatRepo,
		guard:       deps.Guard,
		fares:       deps.Fares,
		coupons:     deps.Coupons,
		tokens:      deps.Tokens,
		notifier:    deps.Notifier,
		invalidator: deps.Invalidator,
		config:      cfg,
		now:         time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error) {
	departureID, err := uuid.Parse(req.DepartureID)
	if err != nil {
		return nil, fmt.Errorf("invalid departure ID: %w", err)
	}

	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	for _, idStr := range req.SeatIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid seat ID: %s", idStr)
		}
		seatIDs = append(seatIDs, id)
	}

	now := s.now()
	reservationID := uuid.New()
	holdWindow := s.config.Reservation.HoldWindow

	fare, err := s.fares.DepartureFare(ctx, departureID)
	if err != nil {
		return nil, err
	}
	baseAmount := fare * int64(len(seatIDs))

	// Fast path: contended seats bounce off Redis before touching Postgres.
	guarded := false
	if s.guard != nil {
		if err := s.guard.Hold(ctx, seatIDs, reservationID, holdWindow); err != nil {
			var conflict *seats.ConflictError
			if errors.As(err, &conflict) {
				return nil, conflict
			}
			// Guard outage is not fatal, the ledger stays authoritative.
			logger.GetDefault().Warn("hold guard unavailable, falling through to ledger", "error", err)
		} else {
			guarded = true
		}
	}

	if err := s.ledger.TryHold(ctx, departureID, seatIDs, reservationID); err != nil {
		s.releaseGuard(ctx, guarded, seatIDs, reservationID)
		return nil, err
	}

	// Price the hold. The coupon slot is only consumed at confirmation.
	var discount int64
	var couponID *uuid.UUID
	if req.CouponCode != "" {
		quoted, id, err := s.coupons.Quote(ctx, req.CouponCode, baseAmount, now)
		if err != nil {
			s.rollbackHold(ctx, departureID, seatIDs, reservationID, guarded)
			return nil, err
		}
		discount = quoted
		couponID = &id
	}

	seatRows, err := s.seatRepo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		s.rollbackHold(ctx, departureID, seatIDs, reservationID, guarded)
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}

	reservation := &Reservation{
		ID:             reservationID,
		UserID:         userID,
		DepartureID:    departureID,
		Status:         StatusPendingHold,
		SeatCount:      len(seatIDs),
		BaseAmount:     baseAmount,
		DiscountAmount: discount,
		TotalAmount:    baseAmount - discount,
		CouponCode:     req.CouponCode,
		CouponID:       couponID,
		HoldExpiresAt:  now.Add(holdWindow),
	}
	for _, seat := range seatRows {
		reservation.Seats = append(reservation.Seats, ReservationSeat{
			ReservationID: reservationID,
			SeatID:        seat.ID,
			SeatLabel:     seat.Label,
			SeatPrice:     fare,
		})
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		s.rollbackHold(ctx, departureID, seatIDs, reservationID, guarded)
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.invalidateSeatMap(ctx, departureID)
	s.publish(ctx, EventReservationCreated, reservation)
	logger.GetDefault().LogReservationCreated(ctx, reservationID.String(), departureID.String(), userID.String())

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) Confirm(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*ReservationResponse, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, ErrNotOwner
	}
	return s.confirm(ctx, reservation)
}

func (s *service) ConfirmInternal(ctx context.Context, id uuid.UUID) (*ReservationResponse, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, reservation)
}

// confirm races the sweeper for the PENDING_HOLD -> CONFIRMED transition.
// The conditional update decides the winner; side effects run only on the
// winning path, so the coupon slot is consumed and tokens are minted at most
// once. Confirming an already confirmed reservation is an idempotent success.
// A confirm arriving past the hold deadline expires the reservation itself
// rather than waiting for the next sweep.
func (s *service) confirm(ctx context.Context, reservation *Reservation) (*ReservationResponse, error) {
	if reservation.Status == StatusConfirmed {
		resp := reservation.ToResponse()
		return &resp, nil
	}

	now := s.now()
	if reservation.Status == StatusPendingHold && !now.Before(reservation.HoldExpiresAt) {
		if _, err := s.ExpireIfOverdue(ctx, reservation, now); err != nil {
			return nil, err
		}
		return nil, &TransitionError{Current: StatusExpired}
	}

	won, err := s.repo.UpdateStatusIf(ctx, reservation.ID, StatusPendingHold, StatusConfirmed,
		map[string]interface{}{"confirmed_at": now})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm reservation: %w", err)
	}

	if !won {
		current, err := s.load(ctx, reservation.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == StatusConfirmed {
			resp := current.ToResponse()
			return &resp, nil
		}
		return nil, &TransitionError{Current: current.Status}
	}

	seatIDs := reservation.SeatIDs()
	if err := s.ledger.Finalize(ctx, reservation.DepartureID, seatIDs, reservation.ID); err != nil {
		return nil, fmt.Errorf("failed to finalize seats: %w", err)
	}
	s.releaseGuard(ctx, s.guard != nil, seatIDs, reservation.ID)

	if reservation.CouponID != nil {
		if err := s.coupons.ConsumeRedemption(ctx, *reservation.CouponID); err != nil {
			// The quoted discount stands; an exhausted slot at this point is
			// recorded, not bounced back to a paid customer.
			logger.GetDefault().Warn("coupon slot not consumed on confirm",
				"reservation", reservation.ID.String(), "error", err)
		}
	}

	tokens := make(map[uuid.UUID]string, len(reservation.Seats))
	for i := range reservation.Seats {
		seat := &reservation.Seats[i]
		token, err := s.tokens.Issue(seat.SeatID, reservation.DepartureID, seat.SeatLabel, now)
		if err != nil {
			return nil, fmt.Errorf("failed to issue boarding token: %w", err)
		}
		seat.BoardingToken = token
		tokens[seat.SeatID] = token
	}
	if err := s.repo.SetSeatTokens(ctx, reservation.ID, tokens); err != nil {
		return nil, fmt.Errorf("failed to store boarding tokens: %w", err)
	}

	reservation.Status = StatusConfirmed
	reservation.ConfirmedAt = &now

	s.invalidateSeatMap(ctx, reservation.DepartureID)
	s.publish(ctx, EventReservationConfirmed, reservation)
	logger.GetDefault().LogReservationConfirmed(ctx, reservation.ID.String(), reservation.TotalAmount)

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if reservation.UserID != userID {
		return ErrNotOwner
	}
	return s.cancel(ctx, reservation)
}

func (s *service) CancelInternal(ctx context.Context, id uuid.UUID) error {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.cancel(ctx, reservation)
}

// cancel is valid only from PENDING_HOLD. Unlike confirm there is no
// idempotence carve-out: a repeat cancel reports the terminal state.
func (s *service) cancel(ctx context.Context, reservation *Reservation) error {
	now := s.now()
	won, err := s.repo.UpdateStatusIf(ctx, reservation.ID, StatusPendingHold, StatusCancelled,
		map[string]interface{}{"cancelled_at": now})
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if !won {
		current, err := s.load(ctx, reservation.ID)
		if err != nil {
			return err
		}
		return &TransitionError{Current: current.Status}
	}

	seatIDs := reservation.SeatIDs()
	if err := s.ledger.Release(ctx, reservation.DepartureID, seatIDs, reservation.ID); err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	s.releaseGuard(ctx, s.guard != nil, seatIDs, reservation.ID)

	s.invalidateSeatMap(ctx, reservation.DepartureID)
	s.publish(ctx, EventReservationCancelled, reservation)

	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*ReservationResponse, error) {
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, ErrNotOwner
	}
	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) (*PaginatedReservations, error) {
	reservations, totalCount, err := s.repo.GetUserReservations(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	responses := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, reservations[i].ToResponse())
	}

	totalPages := int((totalCount + int64(query.Limit) - 1) / int64(query.Limit))
	return &PaginatedReservations{
		Reservations: responses,
		TotalCount:   totalCount,
		Page:         query.Page,
		Limit:        query.Limit,
		TotalPages:   totalPages,
	}, nil
}

func (s *service) ExpireIfOverdue(ctx context.Context, reservation *Reservation, now time.Time) (bool, error) {
	if !reservation.IsOverdue(now) {
		return false, nil
	}

	won, err := s.repo.UpdateStatusIf(ctx, reservation.ID, StatusPendingHold, StatusExpired, nil)
	if err != nil {
		return false, fmt.Errorf("failed to expire reservation: %w", err)
	}
	if !won {
		// A confirm or cancel got there first; nothing left to do.
		return false, nil
	}

	seatIDs := reservation.SeatIDs()
	if err := s.ledger.Release(ctx, reservation.DepartureID, seatIDs, reservation.ID); err != nil {
		return true, fmt.Errorf("failed to release expired seats: %w", err)
	}
	s.releaseGuard(ctx, s.guard != nil, seatIDs, reservation.ID)

	s.invalidateSeatMap(ctx, reservation.DepartureID)
	s.publish(ctx, EventReservationExpired, reservation)
	logger.GetDefault().LogReservationExpired(ctx, reservation.ID.String())

	return true, nil
}

func (s *service) SweepExpired(ctx context.Context, batchSize int) (int, error) {
	now := s.now()
	overdue, err := s.repo.ListOverdue(ctx, now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue reservations: %w", err)
	}

	expired := 0
	for i := range overdue {
		won, err := s.ExpireIfOverdue(ctx, &overdue[i], now)
		if err != nil {
			// One bad row must not stall the rest of the batch.
			logger.GetDefault().Error("failed to expire reservation",
				"reservation", overdue[i].ID.String(), "error", err)
			continue
		}
		if won {
			expired++
		}
	}

	return expired, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

func (s *service) rollbackHold(ctx context.Context, departureID uuid.UUID, seatIDs []uuid.UUID, reservationID uuid.UUID, guarded bool) {
	if err := s.ledger.Release(ctx, departureID, seatIDs, reservationID); err != nil {
		logger.GetDefault().Error("failed to roll back seat hold", "error", err)
	}
	s.releaseGuard(ctx, guarded, seatIDs, reservationID)
}

func (s *service) releaseGuard(ctx context.Context, guarded bool, seatIDs []uuid.UUID, reservationID uuid.UUID) {
	if !guarded || s.guard == nil {
		return
	}
	if _, err := s.guard.Release(ctx, seatIDs, reservationID); err != nil {
		// Guard keys expire on their own TTL, a failed release only delays
		// the fast path for these seats.
		logger.GetDefault().Debug("failed to release hold guard", "error", err)
	}
}

func (s *service) invalidateSeatMap(ctx context.Context, departureID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateSeatMap(ctx, departureID)
	}
}

func (s *service) publish(ctx context.Context, eventType string, reservation *Reservation) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, eventType, reservation.ID, reservation.UserID, map[string]interface{}{
			"departure_id": reservation.DepartureID.String(),
			"status":       reservation.Status.String(),
			"seat_count":   reservation.SeatCount,
			"total_amount": reservation.TotalAmount,
		})
	}
}
