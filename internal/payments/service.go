package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridepass/internal/reservations"
	"ridepass/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLatePayment = errors.New("payment completed after reservation expired")

// Reconciliation outcomes returned to the gateway
const (
	OutcomeConfirmed = "RESERVATION_CONFIRMED"
	OutcomeCancelled = "RESERVATION_CANCELLED"
	OutcomeDuplicate = "DUPLICATE_IGNORED"
	OutcomeLate      = "LATE_PAYMENT_REVIEW"
)

// ReservationLifecycle is the slice of the reservation service the
// reconciler drives.
type ReservationLifecycle interface {
	ConfirmInternal(ctx context.Context, id uuid.UUID) (*reservations.ReservationResponse, error)
	CancelInternal(ctx context.Context, id uuid.UUID) error
}

// Notifier publishes payment events; delivery failures never fail the callback
type Notifier interface {
	Publish(ctx context.Context, eventType string, entityID, userID uuid.UUID, payload map[string]interface{})
}

// Payment event names
const (
	EventPaymentCompleted      = "PAYMENT_COMPLETED"
	EventPaymentFailed         = "PAYMENT_FAILED"
	EventPaymentReviewRequired = "PAYMENT_REVIEW_REQUIRED"
)

type Service interface {
	// HandleCallback reconciles one gateway callback against the reservation
	// lifecycle. Replays of an already-processed transaction id are no-ops.
	HandleCallback(ctx context.Context, req PaymentCallbackRequest) (*PaymentCallbackResponse, error)

	GetByReservationID(ctx context.Context, reservationID string) ([]PaymentRecord, error)
	ListRequiringReview(ctx context.Context, limit int) ([]PaymentRecord, error)
	ResolveReview(ctx context.Context, recordID string) error
}

type service struct {
	repo      Repository
	lifecycle ReservationLifecycle
	notifier  Notifier
	now       func() time.Time
}

func NewService(repo Repository, lifecycle ReservationLifecycle, notifier Notifier) Service {
	return &service{
		repo:      repo,
		lifecycle: lifecycle,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *service) HandleCallback(ctx context.Context, req PaymentCallbackRequest) (*PaymentCallbackResponse, error) {
	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID: %w", err)
	}

	status := Status(req.Status)
	if status != StatusCompleted && status != StatusFailed {
		return nil, fmt.Errorf("unsupported payment status: %s", req.Status)
	}

	// Replay check first: a transaction id already on file means the gateway
	// retried a callback we have fully processed.
	if existing, err := s.repo.GetByTransactionID(ctx, req.TransactionID); err == nil {
		logger.GetDefault().Debug("duplicate payment callback ignored", "transaction_id", existing.TransactionID)
		return &PaymentCallbackResponse{
			TransactionID: req.TransactionID,
			ReservationID: req.ReservationID,
			Outcome:       OutcomeDuplicate,
			Duplicate:     true,
		}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check transaction: %w", err)
	}

	now := s.now()
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	record := &PaymentRecord{
		ReservationID: reservationID,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        status,
		TransactionID: req.TransactionID,
		ProcessedAt:   &now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		// A concurrent replay can lose the race on the unique index; treat
		// that exactly like the read-path duplicate.
		if existing, lookupErr := s.repo.GetByTransactionID(ctx, req.TransactionID); lookupErr == nil {
			logger.GetDefault().Debug("duplicate payment callback ignored", "transaction_id", existing.TransactionID)
			return &PaymentCallbackResponse{
				TransactionID: req.TransactionID,
				ReservationID: req.ReservationID,
				Outcome:       OutcomeDuplicate,
				Duplicate:     true,
			}, nil
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	switch status {
	case StatusCompleted:
		return s.reconcileCompleted(ctx, record, req)
	default:
		return s.reconcileFailed(ctx, record, req)
	}
}

func (s *service) reconcileCompleted(ctx context.Context, record *PaymentRecord, req PaymentCallbackRequest) (*PaymentCallbackResponse, error) {
	reservation, err := s.lifecycle.ConfirmInternal(ctx, record.ReservationID)
	if err != nil {
		var transition *reservations.TransitionError
		if errors.As(err, &transition) && transition.Current == reservations.StatusExpired {
			// Money arrived after the sweeper reclaimed the seats. The funds
			// are real, so the record is flagged for a human instead of
			// being dropped.
			if updateErr := s.repo.Update(ctx, record.ID, map[string]interface{}{
				"requires_review": true,
				"review_reason":   "payment completed after hold expired",
			}); updateErr != nil {
				return nil, fmt.Errorf("failed to flag late payment: %w", updateErr)
			}

			logger.GetDefault().LogLatePayment(ctx, record.TransactionID, record.ReservationID.String())
			s.publish(ctx, EventPaymentReviewRequired, record, uuid.Nil)

			return &PaymentCallbackResponse{
				TransactionID: record.TransactionID,
				ReservationID: req.ReservationID,
				Outcome:       OutcomeLate,
			}, ErrLatePayment
		}
		return nil, fmt.Errorf("failed to confirm reservation for payment %s: %w", record.TransactionID, err)
	}

	userID, _ := uuid.Parse(reservation.UserID)
	s.publish(ctx, EventPaymentCompleted, record, userID)

	return &PaymentCallbackResponse{
		TransactionID: record.TransactionID,
		ReservationID: req.ReservationID,
		Outcome:       OutcomeConfirmed,
	}, nil
}

func (s *service) reconcileFailed(ctx context.Context, record *PaymentRecord, req PaymentCallbackRequest) (*PaymentCallbackResponse, error) {
	if err := s.lifecycle.CancelInternal(ctx, record.ReservationID); err != nil {
		// The hold may already be expired or confirmed through another
		// payment; a failed charge has nothing left to undo then.
		if !errors.Is(err, reservations.ErrInvalidTransition) {
			return nil, fmt.Errorf("failed to cancel reservation for payment %s: %w", record.TransactionID, err)
		}
	}

	s.publish(ctx, EventPaymentFailed, record, uuid.Nil)

	return &PaymentCallbackResponse{
		TransactionID: record.TransactionID,
		ReservationID: req.ReservationID,
		Outcome:       OutcomeCancelled,
	}, nil
}

func (s *service) GetByReservationID(ctx context.Context, reservationID string) ([]PaymentRecord, error) {
	id, err := uuid.Parse(reservationID)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation ID: %w", err)
	}
	return s.repo.GetByReservationID(ctx, id)
}

func (s *service) ListRequiringReview(ctx context.Context, limit int) ([]PaymentRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListRequiringReview(ctx, limit)
}

func (s *service) ResolveReview(ctx context.Context, recordID string) error {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return fmt.Errorf("invalid payment record ID: %w", err)
	}
	return s.repo.ClearReview(ctx, id)
}

func (s *service) publish(ctx context.Context, eventType string, record *PaymentRecord, userID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, eventType, record.ReservationID, userID, map[string]interface{}{
			"transaction_id": record.TransactionID,
			"amount":         record.Amount,
			"currency":       record.Currency,
			"status":         record.Status.String(),
		})
	}
}
