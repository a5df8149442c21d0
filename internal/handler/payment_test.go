package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"djassa-payments/internal/config"
	"djassa-payments/internal/dto"
	"djassa-payments/internal/handler"
	appmw "djassa-payments/internal/middleware"
	"djassa-payments/internal/metrics"
	"djassa-payments/internal/model"
	"djassa-payments/internal/server"
	"djassa-payments/internal/service"
)

type fakePaymentService struct {
	initCalls   int
	verifyCalls int

	initData *dto.InitializeData
	initErr  error

	verifyResult *service.VerifyResult
	verifyErr    error
}

func (f *fakePaymentService) InitializePayment(_ context.Context, _ *dto.PaymentRequest) (*dto.InitializeData, error) {
	f.initCalls++
	if f.initErr != nil {
		return nil, f.initErr
	}
	return f.initData, nil
}

func (f *fakePaymentService) VerifyPayment(_ context.Context, _ string) (*service.VerifyResult, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResult, nil
}

type fakeWebhookService struct {
	err error
}

func (f *fakeWebhookService) HandleWebhook(_ context.Context, _ string, _ []byte) error {
	return f.err
}

func newHandlerEcho(payments *fakePaymentService, webhooks *fakeWebhookService) *echo.Echo {
	h := handler.NewPaymentHandler(payments, webhooks, &metrics.Counters{})
	e := echo.New()
	e.POST("/api/payments", h.HandlePayment)
	e.GET("/api/payments/callback", h.HandleCallback)
	e.POST("/api/payments/webhook", h.HandleWebhook)
	e.GET("/api/health", h.HandleHealth)
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlePayment_UnknownAction(t *testing.T) {
	payments := &fakePaymentService{}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments", `{"action":"refund_payment"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, payments.initCalls)
	require.Zero(t, payments.verifyCalls)
}

func TestHandlePayment_Initialize_MissingFieldsRejectedBeforeService(t *testing.T) {
	payments := &fakePaymentService{}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments", `{"action":"initialize_payment","amount":2000}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, payments.initCalls)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "error", resp.Status)
	require.Contains(t, resp.Errors, "user_id")
	require.Contains(t, resp.Errors, "email")
	require.Contains(t, resp.Errors, "payment_type")
}

func TestHandlePayment_Initialize_Success(t *testing.T) {
	payments := &fakePaymentService{
		initData: &dto.InitializeData{
			AuthorizationURL: "https://checkout.example/tokens_u1_1",
			AccessCode:       "ac_1",
			Reference:        "tokens_u1_1",
		},
	}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments",
		`{"action":"initialize_payment","user_id":"u1","email":"u1@djassa.ci","amount":2000,"payment_type":"tokens","tokens_amount":12}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.InitializeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.Equal(t, "tokens_u1_1", resp.Data.Reference)
	require.NotEmpty(t, resp.Data.AuthorizationURL)
}

func TestHandlePayment_Initialize_PriceMismatch(t *testing.T) {
	payments := &fakePaymentService{
		initErr: &service.PriceMismatchError{Expected: 2000, Received: 1999},
	}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments",
		`{"action":"initialize_payment","user_id":"u1","email":"u1@djassa.ci","amount":1999,"payment_type":"tokens","tokens_amount":12}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Invalid payment amount", resp.Message)
	require.Contains(t, resp.Errors["amount"], "expected 2000")
	require.Contains(t, resp.Errors["amount"], "received 1999")
}

func TestHandlePayment_Verify_MissingReferenceRejectedBeforeService(t *testing.T) {
	payments := &fakePaymentService{}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments", `{"action":"verify_payment"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, payments.verifyCalls)
}

func TestHandlePayment_Verify_TestModeResponse(t *testing.T) {
	payments := &fakePaymentService{
		verifyResult: &service.VerifyResult{
			Verified: true,
			TestMode: true,
			Status:   model.PaymentStatusTestSuccess,
			Message:  "Test payment verified. No balance was credited.",
		},
	}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments", `{"action":"verify_payment","reference":"tokens_u1_1"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.True(t, resp.TestMode)
	require.Contains(t, resp.Message, "No balance was credited")
}

func TestHandlePayment_Verify_NotSuccessfulIsAnError(t *testing.T) {
	payments := &fakePaymentService{
		verifyResult: &service.VerifyResult{
			Verified: false,
			Status:   model.PaymentStatusPending,
			Message:  "Payment not completed (gateway status: abandoned)",
		},
	}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments", `{"action":"verify_payment","reference":"tokens_u1_1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePayment_Verify_UnknownReference(t *testing.T) {
	payments := &fakePaymentService{verifyErr: service.ErrPaymentNotFound}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments", `{"action":"verify_payment","reference":"tokens_u1_404"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePayment_GatewayNotConfigured(t *testing.T) {
	payments := &fakePaymentService{initErr: service.ErrGatewayNotConfigured}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	rec := postJSON(e, "/api/payments",
		`{"action":"initialize_payment","user_id":"u1","email":"u1@djassa.ci","amount":2000,"payment_type":"tokens","tokens_amount":12}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	e := newHandlerEcho(&fakePaymentService{}, &fakeWebhookService{err: service.ErrInvalidSignature})

	rec := postJSON(e, "/api/payments/webhook", `{"event":"charge.success"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCallback_RendersConfirmation(t *testing.T) {
	payments := &fakePaymentService{
		verifyResult: &service.VerifyResult{
			Verified: true,
			Status:   model.PaymentStatusSuccess,
			Message:  "Payment verified. Tokens credited.",
		},
	}
	e := newHandlerEcho(payments, &fakeWebhookService{})

	req := httptest.NewRequest(http.MethodGet, "/api/payments/callback?reference=tokens_u1_1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Payment confirmed")
}

func TestServer_PaymentEndpointRequiresAuth(t *testing.T) {
	h := handler.NewPaymentHandler(&fakePaymentService{}, &fakeWebhookService{}, &metrics.Counters{})
	srv := server.NewServer(h,
		&config.Auth{JWTSecret: "secret"},
		&config.RateLimit{Requests: 10, WindowMinutes: 15},
		appmw.NewMemoryCounterStore(),
	)

	rec := postJSON(srv.Echo(), "/api/payments", `{"action":"verify_payment","reference":"r"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_AuthenticatedRequestPasses(t *testing.T) {
	payments := &fakePaymentService{
		verifyResult: &service.VerifyResult{Verified: true, Status: model.PaymentStatusSuccess, Message: "ok"},
	}
	h := handler.NewPaymentHandler(payments, &fakeWebhookService{}, &metrics.Counters{})
	srv := server.NewServer(h,
		&config.Auth{JWTSecret: "secret"},
		&config.RateLimit{Requests: 10, WindowMinutes: 15},
		appmw.NewMemoryCounterStore(),
	)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/payments",
		strings.NewReader(`{"action":"verify_payment","reference":"tokens_u1_1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, payments.verifyCalls)
}
