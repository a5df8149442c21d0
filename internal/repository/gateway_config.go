package repository

import (
	"context"
	"djassa-payments/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GatewayConfigRepository interface {
	Get(ctx context.Context, provider string) (*model.GatewayConfig, error)
	Upsert(ctx context.Context, cfg *model.GatewayConfig) error
}

type gatewayConfigRepoImpl struct {
	db *gorm.DB
}

func NewGatewayConfigRepository(db *gorm.DB) GatewayConfigRepository {
	return &gatewayConfigRepoImpl{
		db: db,
	}
}

func (r *gatewayConfigRepoImpl) Get(ctx context.Context, provider string) (*model.GatewayConfig, error) {
	var cfg model.GatewayConfig
	err := r.db.WithContext(ctx).
		Where("provider = ?", provider).
		First(&cfg).Error

	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *gatewayConfigRepoImpl) Upsert(ctx context.Context, cfg *model.GatewayConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"secret_key_enc": cfg.SecretKeyEnc,
			"public_key_enc": cfg.PublicKeyEnc,
			"updated_at":     time.Now(),
		}),
	}).Create(cfg).Error
}
