package handler

import (
	"djassa-payments/internal/dto"
	"djassa-payments/internal/metrics"
	"djassa-payments/internal/service"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	webhookService service.WebhookService
	counters       *metrics.Counters
}

func NewPaymentHandler(paymentService service.PaymentService, webhookService service.WebhookService, counters *metrics.Counters) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookService: webhookService,
		counters:       counters,
	}
}

// HandlePayment dispatches on the action field of the request body.
func (h *PaymentHandler) HandlePayment(c echo.Context) error {
	var req dto.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: "invalid request body",
		})
	}

	switch req.Action {
	case dto.ActionInitializePayment:
		return h.initializePayment(c, &req)
	case dto.ActionVerifyPayment:
		return h.verifyPayment(c, &req)
	default:
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: "unknown action",
			Errors:  map[string]string{"action": "action must be initialize_payment or verify_payment"},
		})
	}
}

func (h *PaymentHandler) initializePayment(c echo.Context, req *dto.PaymentRequest) error {
	ctx := c.Request().Context()

	// Schema validation runs before any credential or gateway access.
	if fieldErrs := req.ValidateInitialize(); fieldErrs != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: "validation failed",
			Errors:  fieldErrs,
		})
	}

	data, err := h.paymentService.InitializePayment(ctx, req)
	if err != nil {
		return h.paymentError(c, err)
	}

	return c.JSON(http.StatusOK, dto.InitializeResponse{
		Status: "success",
		Data:   *data,
	})
}

func (h *PaymentHandler) verifyPayment(c echo.Context, req *dto.PaymentRequest) error {
	ctx := c.Request().Context()

	if fieldErrs := req.ValidateVerify(); fieldErrs != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: "validation failed",
			Errors:  fieldErrs,
		})
	}

	result, err := h.paymentService.VerifyPayment(ctx, req.Reference)
	if err != nil {
		return h.paymentError(c, err)
	}

	if !result.Verified {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: result.Message,
		})
	}

	return c.JSON(http.StatusOK, dto.VerifyResponse{
		Status:   "success",
		TestMode: result.TestMode,
		Message:  result.Message,
		Data:     result.Gateway,
	})
}

// paymentError maps service errors onto the API error taxonomy.
func (h *PaymentHandler) paymentError(c echo.Context, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: "validation failed",
			Errors:  validationErr.Fields,
		})
	}

	var mismatchErr *service.PriceMismatchError
	if errors.As(err, &mismatchErr) {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: "Invalid payment amount",
			Errors: map[string]string{
				"amount": fmt.Sprintf("expected %d, received %d", mismatchErr.Expected, mismatchErr.Received),
			},
		})
	}

	var rejectionErr *service.GatewayRejectionError
	if errors.As(err, &rejectionErr) {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Status:  "error",
			Message: rejectionErr.Reason,
		})
	}

	if errors.Is(err, service.ErrPaymentNotFound) {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Status:  "error",
			Message: "unknown payment reference",
		})
	}

	if errors.Is(err, service.ErrGatewayNotConfigured) {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Status:  "error",
			Message: "payment gateway is not configured",
		})
	}

	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Status:  "error",
		Message: "internal error",
	})
}

// HandleCallback is the browser's return from the hosted checkout page.
// It triggers verification and shows a redirect page.
func (h *PaymentHandler) HandleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	reference := c.QueryParam("reference")
	if reference == "" {
		reference = c.QueryParam("trxref")
	}
	if reference == "" {
		return c.String(http.StatusBadRequest, "missing payment reference")
	}

	heading := "Payment received"
	detail := "We are confirming your payment. Your account will be updated shortly."

	result, err := h.paymentService.VerifyPayment(ctx, reference)
	switch {
	case err != nil:
		heading = "Payment pending"
		detail = "We could not confirm your payment yet. It will be retried automatically."
	case result.TestMode:
		heading = "Test payment"
		detail = "This was a test transaction. No balance was credited."
	case result.Verified:
		heading = "Payment confirmed"
		detail = result.Message
	default:
		heading = "Payment not completed"
		detail = result.Message
	}

	html := fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Payment Processing</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
			.countdown {
				font-size: 24px;
				font-weight: bold;
			}
		</style>
	</head>
	<body>
		<h2>%s</h2>
		<p>%s</p>
		<p>Redirecting to homepage in <span class="countdown" id="countdown">10</span> seconds…</p>

		<script>
			let seconds = 10;
			const el = document.getElementById("countdown");

			const timer = setInterval(function () {
				seconds--;
				el.textContent = seconds;

				if (seconds <= 0) {
					clearInterval(timer);
					window.location.href = "/";
				}
			}, 1000);
		</script>
	</body>
	</html>
	`, heading, detail)

	return c.HTML(http.StatusOK, html)
}

func (h *PaymentHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get("X-Paystack-Signature")

	if err := h.webhookService.HandleWebhook(ctx, signature, body); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return c.NoContent(http.StatusUnauthorized)
		}
		return fmt.Errorf("handle webhook: %w", err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"counters": h.counters.Snapshot(),
	})
}
