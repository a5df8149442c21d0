package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"djassa-payments/internal/model"
	"djassa-payments/internal/repository"
	"djassa-payments/internal/secrets"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type WebhookService interface {
	// HandleWebhook authenticates, deduplicates, and processes one
	// gateway webhook delivery. Replays and unhandled event types are
	// accepted silently so the gateway stops retrying.
	HandleWebhook(ctx context.Context, signature string, body []byte) error
}

type webhookServiceImpl struct {
	paymentService    PaymentService
	webhookEventRepo  repository.WebhookEventRepository
	gatewayConfigRepo repository.GatewayConfigRepository
	cipher            *secrets.Cipher
}

func NewWebhookService(
	paymentService PaymentService,
	webhookEventRepo repository.WebhookEventRepository,
	gatewayConfigRepo repository.GatewayConfigRepository,
	cipher *secrets.Cipher,
) WebhookService {
	return &webhookServiceImpl{
		paymentService:    paymentService,
		webhookEventRepo:  webhookEventRepo,
		gatewayConfigRepo: gatewayConfigRepo,
		cipher:            cipher,
	}
}

func (s *webhookServiceImpl) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	cfg, err := s.gatewayConfigRepo.Get(ctx, gatewayProvider)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGatewayNotConfigured
		}
		return fmt.Errorf("load gateway config: %w", err)
	}

	secretKey, err := s.cipher.Decrypt(cfg.SecretKeyEnc)
	if err != nil || secretKey == "" {
		return ErrGatewayNotConfigured
	}

	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	var event model.PaystackWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	eventID := fmt.Sprintf("%s_%d", event.Event, event.Data.ID)

	exists, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if exists {
		return nil
	}

	switch event.Event {
	case "charge.success":
		if _, err := s.paymentService.VerifyPayment(ctx, event.Data.Reference); err != nil {
			// A webhook can arrive before our initialize commit is
			// visible, or reference a payment we never created. Log and
			// ack; the reconciler picks up anything real.
			log.Printf("webhook verify %s: %v", event.Data.Reference, err)
		}
	default:
		log.Printf("ignoring webhook event %s", event.Event)
	}

	return s.webhookEventRepo.MarkProcessed(ctx, eventID, event.Event)
}
