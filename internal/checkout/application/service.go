// Package application orchestrates the QR / bank-transfer checkout flow:
// building the order payload, creating the order through the gateway,
// driving the payment-status polling loop, and handling cancellation.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tastevn/checkout-service/internal/checkout/domain"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrMissingPayment is returned when the backend accepts a non-cash
	// order but the response carries no payment record. Polling with an
	// undefined payment code is never attempted.
	ErrMissingPayment = errors.New("order created without a payment record")
)

type Config struct {
	PollInterval time.Duration
	MaxAttempts  int
	// ConfirmDelay is how long the UI should keep the success view on
	// screen before navigating away. UX smoothing, not correctness.
	ConfirmDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.ConfirmDelay <= 0 {
		c.ConfirmDelay = 1500 * time.Millisecond
	}
	return c
}

// Session is the server-side view of one checkout attempt. Payment is the
// zero value for cash orders. poller is set once before the session is
// registered and never reassigned.
type Session struct {
	ID      string
	Order   domain.Order
	Payment domain.Payment

	poller *Poller

	mu         sync.Mutex
	state      domain.SessionState
	cart       []CartItem
	cartClears int
}

// State returns the current session state.
func (sess *Session) State() domain.SessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// Snapshot is the read-only view exposed to the presentation layer.
type Snapshot struct {
	SessionID     string
	State         domain.SessionState
	ClientStatus  domain.ClientStatus
	AttemptsUsed  int
	MaxAttempts   int
	OrderNumber   string
	TotalAmount   int64
	Method        domain.PaymentMethod
	Display       domain.PaymentDisplay
	RedirectAfter time.Duration
}

// SubmitRequest carries the checkout form, the cart and the chosen method.
type SubmitRequest struct {
	Form   FormState
	Cart   []CartItem
	Method domain.PaymentMethod
}

// Service owns the checkout sessions. Each non-cash session holds exactly
// one Poller; every exit path (confirm, fail, timeout, cancel, Close)
// releases its timer.
type Service struct {
	log       *slog.Logger
	gateway   OrderGateway
	publisher EventPublisher // optional
	journal   Journal        // optional
	dedup     Deduper        // optional
	cfg       Config

	baseCtx context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(log *slog.Logger, gateway OrderGateway, publisher EventPublisher, journal Journal, dedup Deduper, cfg Config) *Service {
	baseCtx, stop := context.WithCancel(context.Background())
	return &Service{
		log:       log,
		gateway:   gateway,
		publisher: publisher,
		journal:   journal,
		dedup:     dedup,
		cfg:       cfg.withDefaults(),
		baseCtx:   baseCtx,
		stop:      stop,
		sessions:  make(map[string]*Session),
	}
}

// Submit builds the payload, creates the order, and for non-cash orders
// starts the polling loop. Cash orders go straight to the placed view.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Snapshot, error) {
	payload, err := BuildOrderRequest(req.Form, req.Cart, req.Method)
	if err != nil {
		return Snapshot{}, err
	}

	order, err := s.gateway.CreateOrder(ctx, payload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create order: %w", err)
	}

	sess := &Session{
		ID:    uuid.NewString(),
		Order: order,
		state: domain.StateAwaitingPayment,
		cart:  req.Cart,
	}

	if req.Method == domain.MethodCash {
		s.register(sess)
		s.applyEvent(sess, domain.EventConfirm)
		s.log.Info("cash order placed", "session_id", sess.ID, "order_number", order.OrderNumber)
		return s.snapshotOf(sess), nil
	}

	if order.Payment == nil {
		return Snapshot{}, ErrMissingPayment
	}
	sess.Payment = *order.Payment
	sess.poller = NewPoller(s.log, s.gateway, s.cfg.PollInterval, s.cfg.MaxAttempts)
	s.register(sess)

	sess.poller.Start(s.baseCtx, sess.Payment.PaymentCode, func(ev domain.Event) {
		s.applyEvent(sess, ev)
	})
	s.log.Info("payment session started",
		"session_id", sess.ID,
		"order_number", order.OrderNumber,
		"payment_code", sess.Payment.PaymentCode)
	return s.snapshotOf(sess), nil
}

// Cancel handles user abandonment of a pending payment. Polling stops
// before the server-side cancel request is dispatched, so no stray
// in-flight poll can resurrect the session. The server-side cancel is
// best-effort: a failure there never blocks the user from leaving.
func (s *Service) Cancel(ctx context.Context, sessionID string) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	if sess.poller != nil {
		sess.poller.Stop()
	}
	s.applyEvent(sess, domain.EventCancel)

	if sess.State() == domain.StateCancelled {
		if err := s.gateway.CancelOrder(ctx, sess.Order.ID, "customer abandoned payment"); err != nil {
			s.log.Warn("server-side order cancel failed", "order_id", sess.Order.ID, "err", err)
		}
	}
	return s.snapshotOf(sess), nil
}

// Retry tears the session down so the user can re-enter the form. A still
// pending session is cancelled first, including the server-side release.
func (s *Service) Retry(ctx context.Context, sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	if !sess.State().Terminal() {
		if _, err := s.Cancel(ctx, sessionID); err != nil {
			return err
		}
	} else if sess.poller != nil {
		sess.poller.Stop()
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Snapshot returns the read-only view of a session.
func (s *Service) Snapshot(sessionID string) (Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshotOf(sess), nil
}

// Close stops every active poller. Called on service shutdown so no timer
// outlives its owner.
func (s *Service) Close() {
	s.stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.poller != nil {
			sess.poller.Stop()
		}
	}
}

func (s *Service) register(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// applyEvent is the single funnel for every transition. The terminal-state
// guard in domain.Transition makes racing signals no-ops, so late poll
// results after confirmation or cancellation change nothing.
func (s *Service) applyEvent(sess *Session, ev domain.Event) {
	sess.mu.Lock()
	old := sess.state
	next := domain.Transition(old, ev)
	if next == old {
		sess.mu.Unlock()
		return
	}
	sess.state = next
	if next == domain.StateConfirmed {
		sess.cart = nil
		sess.cartClears++
	}
	sess.mu.Unlock()

	if sess.poller != nil {
		sess.poller.Stop()
	}
	s.log.Info("checkout session transition",
		"session_id", sess.ID, "from", string(old), "to", string(next))
	s.finalize(sess, next)
}

// finalize journals the outcome and publishes the lifecycle event.
// Both are best-effort side channels; neither can fail the checkout.
func (s *Service) finalize(sess *Session, state domain.SessionState) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempts := 0
	if sess.poller != nil {
		attempts = sess.poller.Attempts()
	}

	if s.journal != nil {
		rec := OutcomeRecord{
			SessionID:    sess.ID,
			OrderID:      sess.Order.ID,
			OrderNumber:  sess.Order.OrderNumber,
			PaymentCode:  sess.Payment.PaymentCode,
			Method:       methodOf(sess),
			State:        state,
			AttemptsUsed: attempts,
		}
		if err := s.journal.RecordOutcome(ctx, rec); err != nil {
			s.log.Warn("journal record failed", "session_id", sess.ID, "err", err)
		}
	}
	s.publishTerminal(ctx, sess, state, attempts)
}

func (s *Service) publishTerminal(ctx context.Context, sess *Session, state domain.SessionState, attempts int) {
	if s.publisher == nil {
		return
	}
	code := sess.Payment.PaymentCode
	if s.dedup != nil && code != "" {
		seen, err := s.dedup.Seen(ctx, code)
		if err != nil {
			s.log.Warn("terminal event dedup check failed", "payment_code", code, "err", err)
		} else if seen {
			s.log.Info("terminal event already published", "payment_code", code)
			return
		}
	}

	var eventType string
	var payload any
	switch state {
	case domain.StateConfirmed:
		eventType = domain.EventTypeConfirmed
		payload = domain.CheckoutConfirmed{
			SessionID:    sess.ID,
			OrderID:      sess.Order.ID,
			OrderNumber:  sess.Order.OrderNumber,
			PaymentCode:  code,
			Amount:       sess.Order.TotalAmount,
			AttemptsUsed: attempts,
		}
	case domain.StateFailed:
		eventType = domain.EventTypeFailed
		payload = domain.CheckoutFailed{
			SessionID:   sess.ID,
			OrderID:     sess.Order.ID,
			PaymentCode: code,
			Reason:      "payment reported failed by backend",
		}
	case domain.StateTimedOut:
		eventType = domain.EventTypeTimedOut
		payload = domain.CheckoutTimedOut{
			SessionID:    sess.ID,
			OrderID:      sess.Order.ID,
			PaymentCode:  code,
			AttemptsUsed: attempts,
		}
	case domain.StateCancelled:
		eventType = domain.EventTypeCancelled
		payload = domain.CheckoutCancelled{
			SessionID:   sess.ID,
			OrderID:     sess.Order.ID,
			PaymentCode: code,
		}
	default:
		return
	}

	if err := s.publisher.Publish(ctx, eventType, sess.Order.OrderNumber, payload); err != nil {
		s.log.Warn("lifecycle event publish failed", "event_type", eventType, "err", err)
	}
}

func (s *Service) snapshotOf(sess *Session) Snapshot {
	state := sess.State()
	attempts, max := 0, 0
	if sess.poller != nil {
		attempts = sess.poller.Attempts()
		max = sess.poller.MaxAttempts()
	}
	return Snapshot{
		SessionID:     sess.ID,
		State:         state,
		ClientStatus:  domain.DeriveClientStatus(state, attempts),
		AttemptsUsed:  attempts,
		MaxAttempts:   max,
		OrderNumber:   sess.Order.OrderNumber,
		TotalAmount:   sess.Order.TotalAmount,
		Method:        methodOf(sess),
		Display:       sess.Payment.Display,
		RedirectAfter: s.cfg.ConfirmDelay,
	}
}

func methodOf(sess *Session) domain.PaymentMethod {
	if sess.Payment.PaymentCode != "" {
		return sess.Payment.Method
	}
	return domain.MethodCash
}
