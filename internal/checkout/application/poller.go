package application

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tastevn/checkout-service/internal/checkout/domain"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 60
)

// Poller drives the bounded payment-status polling loop for one checkout
// session. At most one run is active at a time: Start tears down any prior
// run before installing a new ticker, and Stop is idempotent and safe to
// call from any goroutine. The attempt ceiling exists so an abandoned
// payment screen cannot poll indefinitely.
type Poller struct {
	log         *slog.Logger
	gateway     StatusQuerier
	interval    time.Duration
	maxAttempts int

	mu       sync.Mutex
	cancel   context.CancelFunc
	attempts atomic.Int64
}

func NewPoller(log *slog.Logger, gateway StatusQuerier, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		log:         log,
		gateway:     gateway,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Start begins polling paymentCode, reporting each classified transition to
// onEvent. Returns immediately; all further activity is asynchronous. The
// run ends only on terminal classification, attempt exhaustion, or Stop.
func (p *Poller) Start(ctx context.Context, paymentCode string, onEvent func(domain.Event)) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.attempts.Store(0)
	p.mu.Unlock()

	go p.run(runCtx, cancel, paymentCode, onEvent)
}

// Stop cancels the active run, if any. Safe to call when nothing is active.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Attempts reports how many ticks the current run has consumed.
func (p *Poller) Attempts() int { return int(p.attempts.Load()) }

func (p *Poller) MaxAttempts() int { return p.maxAttempts }

func (p *Poller) run(ctx context.Context, cancel context.CancelFunc, paymentCode string, onEvent func(domain.Event)) {
	defer cancel()

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := int(p.attempts.Add(1))
			if n >= p.maxAttempts {
				// Budget exhausted: report timeout without issuing
				// one more network call.
				cancel()
				onEvent(domain.EventExhaust)
				return
			}
			go p.query(ctx, cancel, paymentCode, onEvent)
		}
	}
}

// query runs off the ticker goroutine so a slow response never delays the
// next tick. A transport error is inconclusive: it is logged and polling
// continues; only a fully parsed status can end the loop.
func (p *Poller) query(ctx context.Context, cancel context.CancelFunc, paymentCode string, onEvent func(domain.Event)) {
	status, err := p.gateway.QueryPaymentStatus(ctx, paymentCode)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("payment status query failed", "payment_code", paymentCode, "err", err)
		}
		return
	}
	ev, ok := domain.Classify(status)
	if !ok {
		return
	}
	// Stop the ticker before reporting so no tick fires against a
	// session the caller already considers closed.
	cancel()
	onEvent(ev)
}
