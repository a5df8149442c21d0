package client

import (
	"djassa-payments/internal/model"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitPostgresClient(databaseURL string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.PremiumPayment{},
		&model.TokenTransaction{},
		&model.SellerTokens{},
		&model.Article{},
		&model.SellerSubscription{},
		&model.WebhookEvent{},
		&model.GatewayConfig{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
