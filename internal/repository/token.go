package repository

import (
	"context"
	"djassa-payments/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenRepository interface {
	CreateTransaction(ctx context.Context, tx *gorm.DB, txn *model.TokenTransaction) error
	FindTransactionByReference(ctx context.Context, reference string) (*model.TokenTransaction, error)
	MarkTransactionSuccess(ctx context.Context, tx *gorm.DB, reference string) error

	// CreditBalance adds tokens to a seller's balance, creating the row
	// on first credit.
	CreditBalance(ctx context.Context, tx *gorm.DB, sellerID string, tokens int64) error

	GetBalance(ctx context.Context, sellerID string) (int64, error)
}

type tokenRepoImpl struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepoImpl{
		db: db,
	}
}

func (r *tokenRepoImpl) CreateTransaction(ctx context.Context, tx *gorm.DB, txn *model.TokenTransaction) error {
	return tx.WithContext(ctx).Create(txn).Error
}

func (r *tokenRepoImpl) FindTransactionByReference(ctx context.Context, reference string) (*model.TokenTransaction, error) {
	var txn model.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("paystack_reference = ?", reference).
		First(&txn).Error

	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *tokenRepoImpl) MarkTransactionSuccess(ctx context.Context, tx *gorm.DB, reference string) error {
	return tx.WithContext(ctx).Model(&model.TokenTransaction{}).
		Where("paystack_reference = ?", reference).
		Updates(map[string]interface{}{
			"status":     "success",
			"updated_at": time.Now(),
		}).Error
}

func (r *tokenRepoImpl) CreditBalance(ctx context.Context, tx *gorm.DB, sellerID string, tokens int64) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "seller_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"token_balance": gorm.Expr("seller_tokens.token_balance + ?", tokens),
			"updated_at":    time.Now(),
		}),
	}).Create(&model.SellerTokens{
		SellerID:     sellerID,
		TokenBalance: tokens,
	}).Error
}

func (r *tokenRepoImpl) GetBalance(ctx context.Context, sellerID string) (int64, error) {
	var seller model.SellerTokens
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		First(&seller).Error

	if err != nil {
		return 0, err
	}

	return seller.TokenBalance, nil
}
