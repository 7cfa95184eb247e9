package departures

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, departure *Departure, seedSeats func(tx *gorm.DB) error) error
	GetByID(ctx context.Context, id uuid.UUID) (*Departure, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Departure, error)
	Delete(ctx context.Context, id uuid.UUID, dropSeats func(tx *gorm.DB) error) error
	GetAll(ctx context.Context, query DepartureListQuery) ([]Departure, int64, error)
	GetUpcoming(ctx context.Context, limit int) ([]Departure, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts the departure and runs the seat seeding callback in the same
// transaction so a departure never exists without its seat rows.
func (r *repository) Create(ctx context.Context, departure *Departure, seedSeats func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(departure).Error; err != nil {
			return err
		}
		if seedSeats != nil {
			return seedSeats(tx)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Departure, error) {
	var departure Departure
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&departure).Error
	if err != nil {
		return nil, err
	}
	return &departure, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Departure, error) {
	var departure Departure

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&departure).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&departure).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&departure).Error; err != nil {
		return nil, err
	}

	return &departure, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, dropSeats func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dropSeats != nil {
			if err := dropSeats(tx); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&Departure{}).Error
	})
}

func (r *repository) GetAll(ctx context.Context, query DepartureListQuery) ([]Departure, int64, error) {
	var departures []Departure
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Departure{})

	if query.RouteCode != "" {
		db = db.Where("route_code = ?", query.RouteCode)
	}

	if query.Origin != "" {
		db = db.Where("LOWER(origin) LIKE ?", "%"+query.Origin+"%")
	}

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	if query.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("departs_at >= ?", dateFrom)
		}
	}

	if query.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			// Add 24 hours to include the entire day
			dateTo = dateTo.Add(24 * time.Hour)
			db = db.Where("departs_at < ?", dateTo)
		}
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	offset := (query.Page - 1) * query.Limit

	err := db.Order("departs_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&departures).Error

	return departures, totalCount, err
}

func (r *repository) GetUpcoming(ctx context.Context, limit int) ([]Departure, error) {
	var departures []Departure
	now := time.Now()

	err := r.db.WithContext(ctx).
		Where("departs_at > ? AND status = ?", now, StatusScheduled).
		Order("departs_at ASC").
		Limit(limit).
		Find(&departures).Error

	return departures, err
}
