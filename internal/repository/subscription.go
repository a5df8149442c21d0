package repository

import (
	"context"
	"djassa-payments/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	// Activate records an active subscription for the seller, keyed by
	// the payment reference so a replayed verification upserts instead
	// of duplicating.
	Activate(ctx context.Context, tx *gorm.DB, sellerID, plan, reference string, start time.Time, expires time.Time) error

	FindByReference(ctx context.Context, reference string) (*model.SellerSubscription, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) Activate(ctx context.Context, tx *gorm.DB, sellerID, plan, reference string, start time.Time, expires time.Time) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "reference"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     "active",
			"started_at": start,
			"expires_at": expires,
			"updated_at": time.Now(),
		}),
	}).Create(&model.SellerSubscription{
		SellerID:  sellerID,
		Plan:      plan,
		Reference: reference,
		Status:    "active",
		StartedAt: &start,
		ExpiresAt: &expires,
	}).Error
}

func (r *subscriptionRepoImpl) FindByReference(ctx context.Context, reference string) (*model.SellerSubscription, error) {
	var sub model.SellerSubscription
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}
