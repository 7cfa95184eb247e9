package reservations

type CreateReservationRequest struct {
	DepartureID string   `json:"departure_id" binding:"required,uuid"`
	SeatIDs     []string `json:"seat_ids" binding:"required,min=1,max=10,dive,uuid"`
	CouponCode  string   `json:"coupon_code" binding:"omitempty,min=3,max=50"`
}

type ReservationListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING_HOLD CONFIRMED EXPIRED CANCELLED"`
}
