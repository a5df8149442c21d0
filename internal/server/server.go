package server

import (
	"djassa-payments/internal/config"
	"djassa-payments/internal/handler"
	appmw "djassa-payments/internal/middleware"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
}

func NewServer(
	paymentHandler *handler.PaymentHandler,
	authCfg *config.Auth,
	rateLimitCfg *config.RateLimit,
	counterStore appmw.CounterStore,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		paymentHandler: paymentHandler,
	}

	s.setupRoutes(authCfg, rateLimitCfg, counterStore)
	return s
}

func (s *Server) setupRoutes(authCfg *config.Auth, rateLimitCfg *config.RateLimit, counterStore appmw.CounterStore) {
	rateLimit := appmw.RateLimitMiddleware(
		counterStore,
		rateLimitCfg.Requests,
		time.Duration(rateLimitCfg.WindowMinutes)*time.Minute,
	)
	auth := appmw.AuthMiddleware(authCfg.JWTSecret)

	api := s.echo.Group("/api")

	api.GET("/health", s.paymentHandler.HandleHealth)

	payments := api.Group("/payments")

	// The action endpoint needs a caller; the callback is an anonymous
	// browser redirect and the webhook authenticates by signature.
	payments.POST("", s.paymentHandler.HandlePayment, auth, rateLimit)
	payments.GET("/callback", s.paymentHandler.HandleCallback, rateLimit)
	payments.POST("/webhook", s.paymentHandler.HandleWebhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

// Echo exposes the underlying router, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
