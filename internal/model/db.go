package model

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentType string

const (
	PaymentTypeTokens             PaymentType = "tokens"
	PaymentTypeArticlePublication PaymentType = "article_publication"
	PaymentTypeSubscription       PaymentType = "subscription"
)

type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusSuccess     PaymentStatus = "success"
	PaymentStatusTestSuccess PaymentStatus = "test_success"
	PaymentStatusFailed      PaymentStatus = "failed"
)

// PremiumPayment is one payment attempt end-to-end; the reference ties
// our record to the gateway transaction. Rows are created pending and
// transition status exactly once.
type PremiumPayment struct {
	ID          uint           `gorm:"primaryKey"`
	Reference   string         `gorm:"size:128;uniqueIndex;not null"`
	UserID      string         `gorm:"size:64;index;not null"`
	Email       string         `gorm:"size:255;not null"`
	Amount      int64          `gorm:"not null"` // major units
	Currency    string         `gorm:"size:8;not null"`
	PaymentType PaymentType    `gorm:"size:32;index;not null"`
	Status      PaymentStatus  `gorm:"size:32;index;not null"` // pending, success, test_success, failed
	ProductData datatypes.JSON `gorm:"type:jsonb"`             // opaque, interpreted per payment type
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TokenTransaction struct {
	ID                uint   `gorm:"primaryKey"`
	SellerID          string `gorm:"size:64;index;not null"`
	TokensAmount      int64  `gorm:"not null"`
	PricePaid         int64  `gorm:"not null"`
	PaystackReference string `gorm:"size:128;uniqueIndex;not null"`
	PaymentMethod     string `gorm:"size:32"`
	Status            string `gorm:"size:32;index;not null"` // pending, success
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type SellerTokens struct {
	SellerID     string `gorm:"primaryKey;size:64"`
	TokenBalance int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Article struct {
	ID          string `gorm:"primaryKey;size:64"`
	SellerID    string `gorm:"size:64;index;not null"`
	Title       string `gorm:"size:255;not null"`
	Status      string `gorm:"size:32;index;not null"` // pending_payment, published
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SellerSubscription struct {
	ID        uint   `gorm:"primaryKey"`
	SellerID  string `gorm:"size:64;index;not null"`
	Plan      string `gorm:"size:32;not null"`
	Reference string `gorm:"size:128;uniqueIndex;not null"`
	Status    string `gorm:"size:32;index;not null"` // pending, active
	StartedAt *time.Time
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WebhookEvent deduplicates gateway webhook deliveries; the gateway
// retries until it sees a 2xx, so replays are expected.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// GatewayConfig holds gateway credentials encrypted at rest; values are
// decrypted per request with the service encryption key.
type GatewayConfig struct {
	Provider     string `gorm:"primaryKey;size:32"`
	SecretKeyEnc string `gorm:"size:512;not null"`
	PublicKeyEnc string `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
