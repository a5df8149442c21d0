package repository

import (
	"context"
	"djassa-payments/internal/model"
	"time"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.PremiumPayment) error
	FindByReference(ctx context.Context, reference string) (*model.PremiumPayment, error)

	// TransitionFromPending moves a payment to a terminal status only if
	// it is still pending. Returns false when the row was already
	// terminal (or does not exist), which makes re-verification a no-op.
	TransitionFromPending(ctx context.Context, tx *gorm.DB, reference string, to model.PaymentStatus) (bool, error)

	// FindStalePending lists pending payments created before olderThan
	// but not before notBefore; rows past the max age are left alone so
	// permanently unresolvable payments cannot monopolize the sweep.
	FindStalePending(ctx context.Context, olderThan, notBefore time.Time, limit int) ([]*model.PremiumPayment, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.PremiumPayment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByReference(ctx context.Context, reference string) (*model.PremiumPayment, error) {
	var payment model.PremiumPayment
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) TransitionFromPending(ctx context.Context, tx *gorm.DB, reference string, to model.PaymentStatus) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PremiumPayment{}).
		Where("reference = ? AND status = ?", reference, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *paymentRepoImpl) FindStalePending(ctx context.Context, olderThan, notBefore time.Time, limit int) ([]*model.PremiumPayment, error) {
	var payments []*model.PremiumPayment
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PaymentStatusPending).
		Where("created_at < ?", olderThan).
		Where("created_at >= ?", notBefore).
		Order("created_at").
		Limit(limit).
		Find(&payments).Error

	if err != nil {
		return nil, err
	}

	return payments, nil
}
