package service

import (
	"context"
	"djassa-payments/internal/config"
	"djassa-payments/internal/repository"
	"log"
	"time"
)

// Reconciler sweeps payments that never received a verification call,
// e.g. the buyer paid and closed the browser before the redirect. Each
// sweep re-runs the normal verification path, which is idempotent, so
// racing a late callback or webhook is safe.
type Reconciler struct {
	paymentService PaymentService
	paymentRepo    repository.PaymentRepository
	interval       time.Duration
	minAge         time.Duration
	maxAge         time.Duration
	batchSize      int
}

func NewReconciler(
	paymentService PaymentService,
	paymentRepo repository.PaymentRepository,
	cfg *config.Reconciler,
) *Reconciler {
	return &Reconciler{
		paymentService: paymentService,
		paymentRepo:    paymentRepo,
		interval:       time.Duration(cfg.IntervalMinutes) * time.Minute,
		minAge:         time.Duration(cfg.MinAgeMinutes) * time.Minute,
		maxAge:         time.Duration(cfg.MaxAgeHours) * time.Hour,
		batchSize:      cfg.BatchSize,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep re-verifies one batch of stale pending payments. Payments past
// the max age stop being swept; by then the buyer is long gone and the
// webhook retry window has closed.
func (r *Reconciler) Sweep(ctx context.Context) {
	now := time.Now()
	cutoff := now.Add(-r.minAge)
	notBefore := now.Add(-r.maxAge)

	payments, err := r.paymentRepo.FindStalePending(ctx, cutoff, notBefore, r.batchSize)
	if err != nil {
		log.Printf("reconciler: list stale payments: %v", err)
		return
	}

	for _, payment := range payments {
		if ctx.Err() != nil {
			return
		}

		result, err := r.paymentService.VerifyPayment(ctx, payment.Reference)
		if err != nil {
			log.Printf("reconciler: verify %s: %v", payment.Reference, err)
			continue
		}

		if result.Verified {
			log.Printf("reconciler: settled %s as %s", payment.Reference, result.Status)
		}
	}
}
