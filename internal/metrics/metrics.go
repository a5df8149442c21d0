package metrics

import "sync/atomic"

type Counters struct {
	PaymentsInitialized uint64
	PaymentsVerified    uint64
	PaymentsFailed      uint64
	TokensCredited      uint64
}

func (c *Counters) IncInitialized() {
	atomic.AddUint64(&c.PaymentsInitialized, 1)
}

func (c *Counters) IncVerified() {
	atomic.AddUint64(&c.PaymentsVerified, 1)
}

func (c *Counters) IncFailed() {
	atomic.AddUint64(&c.PaymentsFailed, 1)
}

func (c *Counters) AddTokensCredited(n uint64) {
	atomic.AddUint64(&c.TokensCredited, n)
}

func (c *Counters) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"payments_initialized": atomic.LoadUint64(&c.PaymentsInitialized),
		"payments_verified":    atomic.LoadUint64(&c.PaymentsVerified),
		"payments_failed":      atomic.LoadUint64(&c.PaymentsFailed),
		"tokens_credited":      atomic.LoadUint64(&c.TokensCredited),
	}
}
