package service

import (
	"context"
	"djassa-payments/internal/client"
	"djassa-payments/internal/dto"
	"djassa-payments/internal/metrics"
	"djassa-payments/internal/model"
	"djassa-payments/internal/repository"
	"djassa-payments/internal/secrets"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const gatewayProvider = "paystack"

const subscriptionDuration = 30 * 24 * time.Hour

// VerifyResult is the outcome of one verification attempt.
type VerifyResult struct {
	Verified bool
	TestMode bool
	Status   model.PaymentStatus
	Message  string
	Gateway  *model.PaystackVerifyData
}

type PaymentService interface {
	InitializePayment(ctx context.Context, req *dto.PaymentRequest) (*dto.InitializeData, error)
	VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error)
}

// productPayload is the interpreted part of the opaque product_data
// blob; unknown fields pass through untouched.
type productPayload struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Plan      string `json:"plan"`
}

type paymentServiceImpl struct {
	db                *gorm.DB
	paystackClient    client.PaystackClient
	serviceBaseUrl    string
	cipher            *secrets.Cipher
	counters          *metrics.Counters
	paymentRepo       repository.PaymentRepository
	tokenRepo         repository.TokenRepository
	articleRepo       repository.ArticleRepository
	subscriptionRepo  repository.SubscriptionRepository
	gatewayConfigRepo repository.GatewayConfigRepository
}

func NewPaymentService(
	db *gorm.DB,
	paystackClient client.PaystackClient,
	serviceBaseUrl string,
	cipher *secrets.Cipher,
	counters *metrics.Counters,
	paymentRepo repository.PaymentRepository,
	tokenRepo repository.TokenRepository,
	articleRepo repository.ArticleRepository,
	subscriptionRepo repository.SubscriptionRepository,
	gatewayConfigRepo repository.GatewayConfigRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:                db,
		paystackClient:    paystackClient,
		serviceBaseUrl:    serviceBaseUrl,
		cipher:            cipher,
		counters:          counters,
		paymentRepo:       paymentRepo,
		tokenRepo:         tokenRepo,
		articleRepo:       articleRepo,
		subscriptionRepo:  subscriptionRepo,
		gatewayConfigRepo: gatewayConfigRepo,
	}
}

// gatewaySecret loads and decrypts the gateway secret key. Credentials
// live encrypted in gateway_configs and are decrypted on every request.
func (s *paymentServiceImpl) gatewaySecret(ctx context.Context) (string, error) {
	cfg, err := s.gatewayConfigRepo.Get(ctx, gatewayProvider)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrGatewayNotConfigured
		}
		return "", fmt.Errorf("load gateway config: %w", err)
	}

	secretKey, err := s.cipher.Decrypt(cfg.SecretKeyEnc)
	if err != nil || secretKey == "" {
		return "", ErrGatewayNotConfigured
	}

	return secretKey, nil
}

func (s *paymentServiceImpl) InitializePayment(ctx context.Context, req *dto.PaymentRequest) (*dto.InitializeData, error) {
	if err := ValidateAmount(req.PaymentType, req.TokensAmount, req.Amount); err != nil {
		var mismatch *PriceMismatchError
		if errors.As(err, &mismatch) {
			log.Printf("price mismatch for user %s: expected %d received %d",
				req.UserID, mismatch.Expected, mismatch.Received)
		}
		return nil, err
	}

	secretKey, err := s.gatewaySecret(ctx)
	if err != nil {
		return nil, err
	}

	var payload productPayload
	if len(req.ProductData) > 0 {
		if err := json.Unmarshal(req.ProductData, &payload); err != nil {
			return nil, &ValidationError{Fields: map[string]string{
				"product_data": "product_data must be a JSON object",
			}}
		}
	}

	if req.PaymentType == "article_publication" && payload.ArticleID != "" {
		article, err := s.articleRepo.FindByID(ctx, payload.ArticleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Fields: map[string]string{
					"product_data": "article_id does not name an existing article",
				}}
			}
			return nil, fmt.Errorf("load article: %w", err)
		}
		if article.SellerID != req.UserID {
			return nil, &ValidationError{Fields: map[string]string{
				"product_data": "article belongs to another seller",
			}}
		}
	}

	reference := fmt.Sprintf("%s_%s_%d", req.PaymentType, req.UserID, time.Now().UnixMilli())

	productData := datatypes.JSON(req.ProductData)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, &model.PremiumPayment{
			Reference:   reference,
			UserID:      req.UserID,
			Email:       req.Email,
			Amount:      req.Amount,
			Currency:    "XOF",
			PaymentType: model.PaymentType(req.PaymentType),
			Status:      model.PaymentStatusPending,
			ProductData: productData,
		}); err != nil {
			return fmt.Errorf("store payment record: %w", err)
		}

		switch req.PaymentType {
		case "tokens":
			if err := s.tokenRepo.CreateTransaction(ctx, tx, &model.TokenTransaction{
				SellerID:          req.UserID,
				TokensAmount:      req.TokensAmount,
				PricePaid:         req.Amount,
				PaystackReference: reference,
				PaymentMethod:     req.PaymentMethod,
				Status:            "pending",
			}); err != nil {
				return fmt.Errorf("store token transaction: %w", err)
			}
		case "article_publication":
			// A payment submitted before the article exists creates the
			// pending article row; otherwise the payment attaches to the
			// article named in product_data.
			if payload.ArticleID == "" {
				article := &model.Article{
					ID:       uuid.NewString(),
					SellerID: req.UserID,
					Title:    payload.Title,
					Status:   "pending_payment",
				}
				if err := s.articleRepo.Create(ctx, tx, article); err != nil {
					return fmt.Errorf("store pending article: %w", err)
				}
				payload.ArticleID = article.ID

				merged, err := json.Marshal(payload)
				if err != nil {
					return fmt.Errorf("marshal product data: %w", err)
				}
				if err := tx.Model(&model.PremiumPayment{}).
					Where("reference = ?", reference).
					Update("product_data", datatypes.JSON(merged)).Error; err != nil {
					return fmt.Errorf("attach article to payment: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	initData, err := s.paystackClient.InitializeTransaction(ctx, secretKey, &client.InitializeTransactionRequest{
		Email:       req.Email,
		Amount:      req.Amount,
		Currency:    "XOF",
		Reference:   reference,
		CallbackURL: fmt.Sprintf("%s/api/payments/callback", s.serviceBaseUrl),
		Metadata: map[string]interface{}{
			"user_id":       req.UserID,
			"payment_type":  req.PaymentType,
			"tokens_amount": req.TokensAmount,
		},
	})
	if err != nil {
		var gwErr *client.GatewayError
		if errors.As(err, &gwErr) {
			return nil, &GatewayRejectionError{Reason: gwErr.Body}
		}
		return nil, fmt.Errorf("paystack initialize transaction: %w", err)
	}

	s.counters.IncInitialized()

	return &dto.InitializeData{
		AuthorizationURL: initData.AuthorizationURL,
		AccessCode:       initData.AccessCode,
		Reference:        reference,
	}, nil
}

func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, reference string) (*VerifyResult, error) {
	payment, err := s.paymentRepo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment record: %w", err)
	}

	// Re-verifying an already-terminal reference is a no-op: no gateway
	// call, no side effect.
	if payment.Status != model.PaymentStatusPending {
		return s.terminalResult(payment.Status), nil
	}

	secretKey, err := s.gatewaySecret(ctx)
	if err != nil {
		return nil, err
	}

	verifyData, err := s.paystackClient.VerifyTransaction(ctx, secretKey, reference)
	if err != nil {
		var gwErr *client.GatewayError
		if errors.As(err, &gwErr) {
			return nil, &GatewayRejectionError{Reason: gwErr.Body}
		}
		return nil, fmt.Errorf("paystack verify transaction: %w", err)
	}

	switch verifyData.Status {
	case "success":
		// handled below
	case "failed":
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.paymentRepo.TransitionFromPending(ctx, tx, reference, model.PaymentStatusFailed)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}
		s.counters.IncFailed()
		return &VerifyResult{
			Verified: false,
			Status:   model.PaymentStatusFailed,
			Message:  "Payment failed at the gateway",
			Gateway:  verifyData,
		}, nil
	default:
		// abandoned, ongoing, pending: leave the record pending so the
		// client or the reconciler can try again.
		return &VerifyResult{
			Verified: false,
			Status:   model.PaymentStatusPending,
			Message:  fmt.Sprintf("Payment not completed (gateway status: %s)", verifyData.Status),
			Gateway:  verifyData,
		}, nil
	}

	if verifyData.Domain == "test" {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.paymentRepo.TransitionFromPending(ctx, tx, reference, model.PaymentStatusTestSuccess)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("mark payment test_success: %w", err)
		}
		return &VerifyResult{
			Verified: true,
			TestMode: true,
			Status:   model.PaymentStatusTestSuccess,
			Message:  "Test payment verified. No balance was credited.",
			Gateway:  verifyData,
		}, nil
	}

	// Live success: the status transition and the side effect commit in
	// one transaction, and the transition is conditional on the row
	// still being pending, so a concurrent or repeated verification
	// cannot credit twice.
	alreadyTerminal := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.paymentRepo.TransitionFromPending(ctx, tx, reference, model.PaymentStatusSuccess)
		if err != nil {
			return err
		}
		if !moved {
			alreadyTerminal = true
			return nil
		}

		return s.applySideEffect(ctx, tx, payment)
	})
	if err != nil {
		return nil, fmt.Errorf("apply payment side effect: %w", err)
	}

	if alreadyTerminal {
		return &VerifyResult{
			Verified: true,
			Status:   model.PaymentStatusSuccess,
			Message:  "Payment already processed",
			Gateway:  verifyData,
		}, nil
	}

	s.counters.IncVerified()

	return &VerifyResult{
		Verified: true,
		Status:   model.PaymentStatusSuccess,
		Message:  s.successMessage(payment.PaymentType),
		Gateway:  verifyData,
	}, nil
}

func (s *paymentServiceImpl) applySideEffect(ctx context.Context, tx *gorm.DB, payment *model.PremiumPayment) error {
	var payload productPayload
	if len(payment.ProductData) > 0 {
		if err := json.Unmarshal(payment.ProductData, &payload); err != nil {
			return fmt.Errorf("decode product data: %w", err)
		}
	}

	switch payment.PaymentType {
	case model.PaymentTypeTokens:
		txn, err := s.tokenRepo.FindTransactionByReference(ctx, payment.Reference)
		if err != nil {
			return fmt.Errorf("load token transaction: %w", err)
		}
		if err := s.tokenRepo.MarkTransactionSuccess(ctx, tx, payment.Reference); err != nil {
			return fmt.Errorf("mark token transaction success: %w", err)
		}
		if err := s.tokenRepo.CreditBalance(ctx, tx, txn.SellerID, txn.TokensAmount); err != nil {
			return fmt.Errorf("credit token balance: %w", err)
		}
		s.counters.AddTokensCredited(uint64(txn.TokensAmount))

	case model.PaymentTypeArticlePublication:
		// Settling must not roll back on a missing or already-published
		// article, or the payment would stay pending and be re-verified
		// forever.
		if payload.ArticleID == "" {
			log.Printf("payment %s has no article to publish", payment.Reference)
			break
		}
		if err := s.articleRepo.Publish(ctx, tx, payload.ArticleID); err != nil {
			return fmt.Errorf("publish article %s: %w", payload.ArticleID, err)
		}

	case model.PaymentTypeSubscription:
		plan := payload.Plan
		if plan == "" {
			plan = "premium_monthly"
		}
		now := time.Now()
		if err := s.subscriptionRepo.Activate(ctx, tx, payment.UserID, plan, payment.Reference,
			now, now.Add(subscriptionDuration)); err != nil {
			return fmt.Errorf("activate subscription: %w", err)
		}

	default:
		return fmt.Errorf("unknown payment type %q", payment.PaymentType)
	}

	return nil
}

func (s *paymentServiceImpl) terminalResult(status model.PaymentStatus) *VerifyResult {
	switch status {
	case model.PaymentStatusTestSuccess:
		return &VerifyResult{
			Verified: true,
			TestMode: true,
			Status:   status,
			Message:  "Test payment verified. No balance was credited.",
		}
	case model.PaymentStatusFailed:
		return &VerifyResult{
			Verified: false,
			Status:   status,
			Message:  "Payment failed at the gateway",
		}
	default:
		return &VerifyResult{
			Verified: true,
			Status:   status,
			Message:  "Payment already processed",
		}
	}
}

func (s *paymentServiceImpl) successMessage(paymentType model.PaymentType) string {
	switch paymentType {
	case model.PaymentTypeTokens:
		return "Payment verified. Tokens credited."
	case model.PaymentTypeArticlePublication:
		return "Payment verified. Article published."
	case model.PaymentTypeSubscription:
		return "Payment verified. Subscription activated."
	default:
		return "Payment verified."
	}
}
