package dto

import (
	"encoding/json"
	"strings"
)

const (
	ActionInitializePayment = "initialize_payment"
	ActionVerifyPayment     = "verify_payment"
)

// PaymentRequest is the action-dispatched body of POST /api/payments.
type PaymentRequest struct {
	Action        string          `json:"action"`
	UserID        string          `json:"user_id"`
	Email         string          `json:"email"`
	Amount        int64           `json:"amount"`
	PaymentType   string          `json:"payment_type"`
	TokensAmount  int64           `json:"tokens_amount,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	ProductData   json.RawMessage `json:"product_data,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

var validPaymentTypes = map[string]bool{
	"tokens":              true,
	"article_publication": true,
	"subscription":        true,
}

// ValidateInitialize checks types, presence, and ranges before any
// business rule or external call runs. Returns per-field errors.
func (r *PaymentRequest) ValidateInitialize() map[string]string {
	errs := make(map[string]string)

	if r.UserID == "" {
		errs["user_id"] = "user_id is required"
	} else if len(r.UserID) > 64 {
		errs["user_id"] = "user_id must be at most 64 characters"
	}

	if r.Email == "" {
		errs["email"] = "email is required"
	} else if len(r.Email) > 255 || !strings.Contains(r.Email, "@") {
		errs["email"] = "email is invalid"
	}

	if r.Amount <= 0 {
		errs["amount"] = "amount must be positive"
	}

	if r.PaymentType == "" {
		errs["payment_type"] = "payment_type is required"
	} else if !validPaymentTypes[r.PaymentType] {
		errs["payment_type"] = "payment_type must be one of tokens, article_publication, subscription"
	}

	if r.PaymentType == "tokens" && r.TokensAmount <= 0 {
		errs["tokens_amount"] = "tokens_amount must be positive for token purchases"
	}

	if len(r.PaymentMethod) > 32 {
		errs["payment_method"] = "payment_method must be at most 32 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r *PaymentRequest) ValidateVerify() map[string]string {
	errs := make(map[string]string)

	if r.Reference == "" {
		errs["reference"] = "reference is required"
	} else if len(r.Reference) > 128 {
		errs["reference"] = "reference must be at most 128 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type InitializeResponse struct {
	Status string         `json:"status"`
	Data   InitializeData `json:"data"`
}

type VerifyResponse struct {
	Status   string      `json:"status"`
	TestMode bool        `json:"test_mode"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
