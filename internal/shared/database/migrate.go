package database

import (
	"ridepass/internal/coupons"
	"ridepass/internal/departures"
	"ridepass/internal/payments"
	"ridepass/internal/reservations"
	"ridepass/internal/seats"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&departures.Departure{},
		&seats.Seat{},
		&reservations.Reservation{},
		&reservations.ReservationSeat{},
		&coupons.Coupon{},
		&payments.PaymentRecord{},
	)
}
