package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, record *PaymentRecord) error
	GetByTransactionID(ctx context.Context, transactionID string) (*PaymentRecord, error)
	GetByReservationID(ctx context.Context, reservationID uuid.UUID) ([]PaymentRecord, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ListRequiringReview(ctx context.Context, limit int) ([]PaymentRecord, error)
	ClearReview(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *PaymentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByTransactionID(ctx context.Context, transactionID string) (*PaymentRecord, error) {
	var record PaymentRecord
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) GetByReservationID(ctx context.Context, reservationID uuid.UUID) ([]PaymentRecord, error) {
	var records []PaymentRecord
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&PaymentRecord{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) ListRequiringReview(ctx context.Context, limit int) ([]PaymentRecord, error) {
	var records []PaymentRecord
	err := r.db.WithContext(ctx).
		Where("requires_review = ?", true).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *repository) ClearReview(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&PaymentRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"requires_review": false,
			"updated_at":      time.Now(),
		}).Error
}
