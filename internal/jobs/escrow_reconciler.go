package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// EscrowSource reports what the ledger owes and what its token account holds
type EscrowSource interface {
	EscrowPosition(ctx context.Context) (liabilities, balance uint64, err error)
}

// Report is the outcome of one reconciliation pass
type Report struct {
	CheckedAt   time.Time `json:"checked_at"`
	Liabilities uint64    `json:"liabilities"`
	Balance     uint64    `json:"balance"`
	Shortfall   uint64    `json:"shortfall"`
	Surplus     uint64    `json:"surplus"`
	Healthy     bool      `json:"healthy"`
}

// EscrowReconciler periodically checks that the ledger's token account covers
// every outstanding sale and refund.
type EscrowReconciler struct {
	source   EscrowSource
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	mu   sync.RWMutex
	last *Report
}

// NewEscrowReconciler creates a new reconciliation job
func NewEscrowReconciler(source EscrowSource, interval time.Duration) *EscrowReconciler {
	return &EscrowReconciler{
		source:   source,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the reconciliation loop until Stop is called
func (r *EscrowReconciler) Start() {
	log.Printf("[Reconciler] Starting escrow reconciliation job (interval: %v)", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.interval)
			if _, err := r.Check(ctx); err != nil {
				log.Printf("[Reconciler] Check failed: %v", err)
			}
			cancel()
		case <-r.stopChan:
			log.Println("[Reconciler] Stopping escrow reconciliation job")
			return
		}
	}
}

// Stop stops the reconciliation loop
func (r *EscrowReconciler) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
}

// Check runs one reconciliation pass and records its report
func (r *EscrowReconciler) Check(ctx context.Context) (Report, error) {
	liabilities, balance, err := r.source.EscrowPosition(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		CheckedAt:   time.Now().UTC(),
		Liabilities: liabilities,
		Balance:     balance,
		Healthy:     balance >= liabilities,
	}
	if report.Healthy {
		report.Surplus = balance - liabilities
	} else {
		report.Shortfall = liabilities - balance
		log.Printf("[Reconciler] WARNING: escrow shortfall of %d (owed=%d, held=%d)", report.Shortfall, liabilities, balance)
	}

	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()

	return report, nil
}

// Last returns the most recent report, if any
func (r *EscrowReconciler) Last() (Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return Report{}, false
	}
	return *r.last, true
}
