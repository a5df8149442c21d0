package client

import (
	"bytes"
	"context"
	"djassa-payments/internal/config"
	"djassa-payments/internal/model"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type InitializeTransactionRequest struct {
	Email       string
	Amount      int64 // major units, converted to the gateway's minor units
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

type PaystackClient interface {
	// InitializeTransaction creates a hosted checkout session for the
	// given reference. The secret key is supplied per call because it is
	// stored encrypted and decrypted per request.
	InitializeTransaction(ctx context.Context, secretKey string, req *InitializeTransactionRequest) (*model.PaystackInitializeData, error)

	// VerifyTransaction fetches the gateway's view of a transaction.
	VerifyTransaction(ctx context.Context, secretKey, reference string) (*model.PaystackVerifyData, error)
}

// GatewayError is a non-2xx answer from the gateway, as opposed to a
// transport failure.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("paystack error %d: %s", e.StatusCode, e.Body)
}

type paystackClientImpl struct {
	httpClient *http.Client
	baseApiURL string
}

func NewPaystackClient(paystackCfg *config.Paystack) PaystackClient {
	return &paystackClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: paystackCfg.BaseApiURL,
	}
}

func (c *paystackClientImpl) InitializeTransaction(ctx context.Context, secretKey string, initReq *InitializeTransactionRequest) (*model.PaystackInitializeData, error) {
	// Gateway amounts are in minor units: 2000 XOF -> 200000.
	minorUnits := decimal.NewFromInt(initReq.Amount).Mul(decimal.NewFromInt(100)).IntPart()

	payload := map[string]interface{}{
		"email":        initReq.Email,
		"amount":       minorUnits,
		"currency":     initReq.Currency,
		"reference":    initReq.Reference,
		"callback_url": initReq.CallbackURL,
	}
	if initReq.Metadata != nil {
		payload["metadata"] = initReq.Metadata
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/transaction/initialize",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var result model.PaystackInitializeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}

	if !result.Status {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: result.Message}
	}

	return &result.Data, nil
}

func (c *paystackClientImpl) VerifyTransaction(ctx context.Context, secretKey, reference string) (*model.PaystackVerifyData, error) {
	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseApiURL, reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var result model.PaystackVerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}

	if !result.Status {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: result.Message}
	}

	return &result.Data, nil
}
