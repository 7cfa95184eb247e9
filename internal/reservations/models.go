package reservations

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is one customer's claim on a set of seats for a departure. A
// reservation starts as PENDING_HOLD with a deadline; exactly one of confirm,
// cancel, or the expiry sweep moves it to a terminal state. Amounts are in
// minor currency units.
type Reservation struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	DepartureID uuid.UUID `gorm:"type:uuid;index;not null" json:"departure_id"`
	Status      Status    `gorm:"type:varchar(20);check:status IN ('PENDING_HOLD', 'CONFIRMED', 'EXPIRED', 'CANCELLED');default:'PENDING_HOLD';index" json:"status"`

	SeatCount      int    `gorm:"not null" json:"seat_count"`
	BaseAmount     int64  `gorm:"not null" json:"base_amount"`
	DiscountAmount int64  `gorm:"not null;default:0" json:"discount_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	CouponCode     string `gorm:"size:50" json:"coupon_code,omitempty"`

	CouponID      *uuid.UUID `gorm:"type:uuid" json:"coupon_id,omitempty"`
	HoldExpiresAt time.Time  `gorm:"not null;index" json:"hold_expires_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Seats []ReservationSeat `json:"seats,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE;"`
}

// ReservationSeat is one seat line on a reservation. The boarding token is
// minted at confirmation time and stays empty before that.
type ReservationSeat struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReservationID uuid.UUID `gorm:"type:uuid;index;not null" json:"reservation_id"`
	SeatID        uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	SeatLabel     string    `gorm:"size:10;not null" json:"seat_label"`
	SeatPrice     int64     `gorm:"not null" json:"seat_price"`
	BoardingToken string    `gorm:"type:text" json:"boarding_token,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}

// TableName sets the table name for ReservationSeat
func (ReservationSeat) TableName() string {
	return "reservation_seats"
}

// IsOverdue reports whether the hold window has lapsed at the given instant
func (r *Reservation) IsOverdue(now time.Time) bool {
	return r.Status == StatusPendingHold && !now.Before(r.HoldExpiresAt)
}

// SeatIDs collects the seat ids on this reservation
func (r *Reservation) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Seats))
	for _, seat := range r.Seats {
		ids = append(ids, seat.SeatID)
	}
	return ids
}
