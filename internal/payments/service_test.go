package payments

import (
	"context"
	"errors"
	"testing"

	"ridepass/internal/reservations"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	records map[string]*PaymentRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*PaymentRecord)}
}

func (r *fakeRepo) Create(ctx context.Context, record *PaymentRecord) error {
	if _, exists := r.records[record.TransactionID]; exists {
		return gorm.ErrDuplicatedKey
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	stored := *record
	r.records[record.TransactionID] = &stored
	return nil
}

func (r *fakeRepo) GetByTransactionID(ctx context.Context, transactionID string) (*PaymentRecord, error) {
	stored, ok := r.records[transactionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *stored
	return &out, nil
}

func (r *fakeRepo) GetByReservationID(ctx context.Context, reservationID uuid.UUID) ([]PaymentRecord, error) {
	var out []PaymentRecord
	for _, stored := range r.records {
		if stored.ReservationID == reservationID {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	for _, stored := range r.records {
		if stored.ID != id {
			continue
		}
		if v, ok := updates["requires_review"].(bool); ok {
			stored.RequiresReview = v
		}
		if v, ok := updates["review_reason"].(string); ok {
			stored.ReviewReason = v
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListRequiringReview(ctx context.Context, limit int) ([]PaymentRecord, error) {
	var out []PaymentRecord
	for _, stored := range r.records {
		if stored.RequiresReview && len(out) < limit {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (r *fakeRepo) ClearReview(ctx context.Context, id uuid.UUID) error {
	for _, stored := range r.records {
		if stored.ID == id {
			stored.RequiresReview = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeLifecycle struct {
	confirmErr   error
	cancelErr    error
	confirmCalls int
	cancelCalls  int
	userID       uuid.UUID
}

func (f *fakeLifecycle) ConfirmInternal(ctx context.Context, id uuid.UUID) (*reservations.ReservationResponse, error) {
	f.confirmCalls++
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &reservations.ReservationResponse{
		ID:     id.String(),
		UserID: f.userID.String(),
		Status: reservations.StatusConfirmed.String(),
	}, nil
}

func (f *fakeLifecycle) CancelInternal(ctx context.Context, id uuid.UUID) error {
	f.cancelCalls++
	return f.cancelErr
}

func callbackRequest(status string) PaymentCallbackRequest {
	return PaymentCallbackRequest{
		TransactionID: "txn-" + uuid.NewString(),
		ReservationID: uuid.NewString(),
		Status:        status,
		Amount:        170000,
		Currency:      "INR",
	}
}

func TestHandleCallbackCompleted(t *testing.T) {
	repo := newFakeRepo()
	lifecycle := &fakeLifecycle{userID: uuid.New()}
	svc := NewService(repo, lifecycle, nil)

	req := callbackRequest("COMPLETED")
	resp, err := svc.HandleCallback(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeConfirmed, resp.Outcome)
	assert.False(t, resp.Duplicate)
	assert.Equal(t, 1, lifecycle.confirmCalls)

	record, err := repo.GetByTransactionID(context.Background(), req.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, record.Status)
	assert.False(t, record.RequiresReview)
}

func TestHandleCallbackFailed(t *testing.T) {
	repo := newFakeRepo()
	lifecycle := &fakeLifecycle{}
	svc := NewService(repo, lifecycle, nil)

	resp, err := svc.HandleCallback(context.Background(), callbackRequest("FAILED"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCancelled, resp.Outcome)
	assert.Equal(t, 1, lifecycle.cancelCalls)
	assert.Equal(t, 0, lifecycle.confirmCalls)
}

func TestHandleCallbackFailedIgnoresSettledReservation(t *testing.T) {
	repo := newFakeRepo()
	// Hold already expired; a failed charge has nothing left to undo
	lifecycle := &fakeLifecycle{
		cancelErr: &reservations.TransitionError{Current: reservations.StatusExpired},
	}
	svc := NewService(repo, lifecycle, nil)

	resp, err := svc.HandleCallback(context.Background(), callbackRequest("FAILED"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, resp.Outcome)
}

func TestHandleCallbackFailedSurfacesOtherErrors(t *testing.T) {
	repo := newFakeRepo()
	lifecycle := &fakeLifecycle{cancelErr: errors.New("database down")}
	svc := NewService(repo, lifecycle, nil)

	_, err := svc.HandleCallback(context.Background(), callbackRequest("FAILED"))
	assert.Error(t, err)
}

func TestHandleCallbackDuplicateTransaction(t *testing.T) {
	repo := newFakeRepo()
	lifecycle := &fakeLifecycle{userID: uuid.New()}
	svc := NewService(repo, lifecycle, nil)

	req := callbackRequest("COMPLETED")
	_, err := svc.HandleCallback(context.Background(), req)
	require.NoError(t, err)

	// The gateway retries the exact same callback
	resp, err := svc.HandleCallback(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	assert.True(t, resp.Duplicate)
	assert.Equal(t, 1, lifecycle.confirmCalls)
}

func TestHandleCallbackLatePayment(t *testing.T) {
	repo := newFakeRepo()
	lifecycle := &fakeLifecycle{
		confirmErr: &reservations.TransitionError{Current: reservations.StatusExpired},
	}
	svc := NewService(repo, lifecycle, nil)

	req := callbackRequest("COMPLETED")
	resp, err := svc.HandleCallback(context.Background(), req)

	require.ErrorIs(t, err, ErrLatePayment)
	require.NotNil(t, resp)
	assert.Equal(t, OutcomeLate, resp.Outcome)

	record, lookupErr := repo.GetByTransactionID(context.Background(), req.TransactionID)
	require.NoError(t, lookupErr)
	assert.True(t, record.RequiresReview)
	assert.Equal(t, "payment completed after hold expired", record.ReviewReason)

	reviews, lookupErr := repo.ListRequiringReview(context.Background(), 10)
	require.NoError(t, lookupErr)
	assert.Len(t, reviews, 1)
}

func TestHandleCallbackCancelledReservationIsNotLate(t *testing.T) {
	repo := newFakeRepo()
	// A completed charge against a user-cancelled hold is an error, not a
	// review case
	lifecycle := &fakeLifecycle{
		confirmErr: &reservations.TransitionError{Current: reservations.StatusCancelled},
	}
	svc := NewService(repo, lifecycle, nil)

	_, err := svc.HandleCallback(context.Background(), callbackRequest("COMPLETED"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLatePayment)
}

func TestHandleCallbackRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeLifecycle{}, nil)

	_, err := svc.HandleCallback(context.Background(), callbackRequest("REFUNDED"))
	assert.Error(t, err)
}

func TestResolveReview(t *testing.T) {
	repo := newFakeRepo()
	lifecycle := &fakeLifecycle{
		confirmErr: &reservations.TransitionError{Current: reservations.StatusExpired},
	}
	svc := NewService(repo, lifecycle, nil)

	req := callbackRequest("COMPLETED")
	_, err := svc.HandleCallback(context.Background(), req)
	require.ErrorIs(t, err, ErrLatePayment)

	record, err := repo.GetByTransactionID(context.Background(), req.TransactionID)
	require.NoError(t, err)

	require.NoError(t, svc.ResolveReview(context.Background(), record.ID.String()))

	reviews, err := repo.ListRequiringReview(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
