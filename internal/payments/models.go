package payments

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// IsValid checks if the payment status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// PaymentRecord is the reconciler's ledger of gateway callbacks. The unique
// transaction id is what makes replayed callbacks no-ops. Amounts are in
// minor currency units.
type PaymentRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReservationID uuid.UUID `gorm:"type:uuid;index;not null" json:"reservation_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Currency      string    `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Status        Status    `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED');default:'PENDING'" json:"status"`
	TransactionID string    `gorm:"uniqueIndex;not null" json:"transaction_id"`

	RequiresReview bool   `gorm:"not null;default:false;index" json:"requires_review"`
	ReviewReason   string `gorm:"size:255" json:"review_reason,omitempty"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName sets the table name for PaymentRecord
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// PaymentCallbackRequest is the gateway webhook payload. Validation runs
// through an explicit validator in the controller since the gateway does not
// share our binding conventions.
type PaymentCallbackRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,min=1,max=100"`
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
	Status        string `json:"status" validate:"required,oneof=COMPLETED FAILED"`
	Amount        int64  `json:"amount" validate:"required,min=0"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
}

type PaymentCallbackResponse struct {
	TransactionID string `json:"transaction_id"`
	ReservationID string `json:"reservation_id"`
	Outcome       string `json:"outcome"`
	Duplicate     bool   `json:"duplicate"`
}
