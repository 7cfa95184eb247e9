package reservations

import "time"

type ReservationSeatInfo struct {
	SeatID        string `json:"seat_id"`
	SeatLabel     string `json:"seat_label"`
	SeatPrice     int64  `json:"seat_price"`
	BoardingToken string `json:"boarding_token,omitempty"`
}

type ReservationResponse struct {
	ID             string                `json:"id"`
	UserID         string                `json:"user_id"`
	DepartureID    string                `json:"departure_id"`
	Status         string                `json:"status"`
	SeatCount      int                   `json:"seat_count"`
	BaseAmount     int64                 `json:"base_amount"`
	DiscountAmount int64                 `json:"discount_amount"`
	TotalAmount    int64                 `json:"total_amount"`
	CouponCode     string                `json:"coupon_code,omitempty"`
	HoldExpiresAt  time.Time             `json:"hold_expires_at"`
	ConfirmedAt    *time.Time            `json:"confirmed_at,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	Seats          []ReservationSeatInfo `json:"seats"`
	CreatedAt      time.Time             `json:"created_at"`
}

type PaginatedReservations struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
}

// ToResponse converts a Reservation to its API representation
func (r *Reservation) ToResponse() ReservationResponse {
	seats := make([]ReservationSeatInfo, 0, len(r.Seats))
	for _, seat := range r.Seats {
		seats = append(seats, ReservationSeatInfo{
			SeatID:        seat.SeatID.String(),
			SeatLabel:     seat.SeatLabel,
			SeatPrice:     seat.SeatPrice,
			BoardingToken: seat.BoardingToken,
		})
	}

	return ReservationResponse{
		ID:             r.ID.String(),
		UserID:         r.UserID.String(),
		DepartureID:    r.DepartureID.String(),
		Status:         r.Status.String(),
		SeatCount:      r.SeatCount,
		BaseAmount:     r.BaseAmount,
		DiscountAmount: r.DiscountAmount,
		TotalAmount:    r.TotalAmount,
		CouponCode:     r.CouponCode,
		HoldExpiresAt:  r.HoldExpiresAt,
		ConfirmedAt:    r.ConfirmedAt,
		CancelledAt:    r.CancelledAt,
		Seats:          seats,
		CreatedAt:      r.CreatedAt,
	}
}
