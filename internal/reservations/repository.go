package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error)

	// UpdateStatusIf performs a conditional status transition. It reports
	// whether this caller won the transition; a false result means the row was
	// no longer in the expected state.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, extra map[string]interface{}) (bool, error)

	// ListOverdue returns pending reservations whose hold window lapsed
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]Reservation, error)

	// SetSeatTokens stores minted boarding tokens on the seat lines
	SetSeatTokens(ctx context.Context, reservationID uuid.UUID, tokens map[uuid.UUID]string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error) {
	var reservations []Reservation
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("user_id = ?", userID)

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Seats").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&reservations).Error

	return reservations, totalCount, err
}

// UpdateStatusIf races against every other transition on the same row. The
// WHERE clause carries the expected status, so of N concurrent callers the
// database lets exactly one through.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("status = ? AND hold_expires_at <= ?", StatusPendingHold, now).
		Order("hold_expires_at ASC").
		Limit(limit).
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) SetSeatTokens(ctx context.Context, reservationID uuid.UUID, tokens map[uuid.UUID]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for seatID, token := range tokens {
			err := tx.Model(&ReservationSeat{}).
				Where("reservation_id = ? AND seat_id = ?", reservationID, seatID).
				Update("boarding_token", token).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
