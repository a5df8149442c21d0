package repository

import (
	"context"
	"djassa-payments/internal/model"
	"time"

	"gorm.io/gorm"
)

type ArticleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, article *model.Article) error
	FindByID(ctx context.Context, articleID string) (*model.Article, error)

	// Publish marks a pending article published; already-published
	// articles are left untouched.
	Publish(ctx context.Context, tx *gorm.DB, articleID string) error
}

type articleRepoImpl struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepoImpl{
		db: db,
	}
}

func (r *articleRepoImpl) Create(ctx context.Context, tx *gorm.DB, article *model.Article) error {
	return tx.WithContext(ctx).Create(article).Error
}

func (r *articleRepoImpl) FindByID(ctx context.Context, articleID string) (*model.Article, error) {
	var article model.Article
	err := r.db.WithContext(ctx).
		Where("id = ?", articleID).
		First(&article).Error

	if err != nil {
		return nil, err
	}

	return &article, nil
}

func (r *articleRepoImpl) Publish(ctx context.Context, tx *gorm.DB, articleID string) error {
	now := time.Now()
	// Zero rows affected means the article is already published (or
	// gone); the payment settling on top of it must not roll back.
	return tx.WithContext(ctx).Model(&model.Article{}).
		Where("id = ? AND status = ?", articleID, "pending_payment").
		Updates(map[string]interface{}{
			"status":       "published",
			"published_at": now,
			"updated_at":   now,
		}).Error
}
