package main

import (
	"context"
	"djassa-payments/internal/client"
	"djassa-payments/internal/config"
	"djassa-payments/internal/handler"
	appmw "djassa-payments/internal/middleware"
	"djassa-payments/internal/metrics"
	"djassa-payments/internal/model"
	"djassa-payments/internal/repository"
	"djassa-payments/internal/secrets"
	"djassa-payments/internal/server"
	"djassa-payments/internal/service"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	cipher, err := secrets.NewCipher(cfg.PaymentEncryptionKey)
	if err != nil {
		log.Fatal("invalid payment encryption key: ", err)
	}

	db := client.InitPostgresClient(cfg.DatabaseURL)
	rdb := client.InitRedisClient(&cfg.Redis)
	paystackClient := client.NewPaystackClient(&cfg.Paystack)

	paymentRepo := repository.NewPaymentRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	gatewayConfigRepo := repository.NewGatewayConfigRepository(db)

	// Seed gateway credentials from the environment if provided; they
	// are stored encrypted and decrypted per request afterwards.
	if cfg.Paystack.SecretKey != "" {
		secretEnc, err := cipher.Encrypt(cfg.Paystack.SecretKey)
		if err != nil {
			log.Fatal("encrypt gateway secret: ", err)
		}
		publicEnc := ""
		if cfg.Paystack.PublicKey != "" {
			if publicEnc, err = cipher.Encrypt(cfg.Paystack.PublicKey); err != nil {
				log.Fatal("encrypt gateway public key: ", err)
			}
		}
		if err := gatewayConfigRepo.Upsert(context.Background(), &model.GatewayConfig{
			Provider:     "paystack",
			SecretKeyEnc: secretEnc,
			PublicKeyEnc: publicEnc,
		}); err != nil {
			log.Fatal("seed gateway config: ", err)
		}
	}

	counters := &metrics.Counters{}

	paymentService := service.NewPaymentService(
		db, paystackClient, cfg.BaseURL, cipher, counters,
		paymentRepo,
		tokenRepo,
		articleRepo,
		subscriptionRepo,
		gatewayConfigRepo,
	)
	webhookService := service.NewWebhookService(paymentService, webhookEventRepo, gatewayConfigRepo, cipher)

	var counterStore appmw.CounterStore
	if rdb != nil {
		counterStore = appmw.NewRedisCounterStore(rdb)
	} else {
		log.Println("no redis configured, rate limits are per-instance")
		counterStore = appmw.NewMemoryCounterStore()
	}

	paymentHandler := handler.NewPaymentHandler(paymentService, webhookService, counters)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(paymentHandler, &cfg.Auth, &cfg.RateLimit, counterStore)

	reconcilerCtx, stopReconciler := context.WithCancel(context.Background())
	defer stopReconciler()

	if cfg.Reconciler.Enabled {
		reconciler := service.NewReconciler(paymentService, paymentRepo, &cfg.Reconciler)
		go reconciler.Run(reconcilerCtx)
	}

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	stopReconciler()

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
