package application

import (
	"context"

	"github.com/tastevn/checkout-service/internal/checkout/domain"
)

// OrderGateway is the boundary to the restaurant backend. The backend owns
// order and payment state; this service only creates, cancels and observes.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
	QueryPaymentStatus(ctx context.Context, paymentCode string) (domain.PaymentStatus, error)
	CancelOrder(ctx context.Context, orderID int64, reason string) error
}

// StatusQuerier is the slice of OrderGateway the poller depends on.
type StatusQuerier interface {
	QueryPaymentStatus(ctx context.Context, paymentCode string) (domain.PaymentStatus, error)
}

// EventPublisher publishes checkout lifecycle events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// Journal records checkout outcomes for support and audit. Best-effort:
// callers log failures and move on.
type Journal interface {
	RecordOutcome(ctx context.Context, rec OutcomeRecord) error
}

// Deduper reports whether a terminal event for a payment code was already
// published, so duplicate sessions observing the same payment emit one event.
type Deduper interface {
	Seen(ctx context.Context, paymentCode string) (bool, error)
}

// OutcomeRecord is the journal row written when a session reaches a
// terminal state.
type OutcomeRecord struct {
	SessionID    string
	OrderID      int64
	OrderNumber  string
	PaymentCode  string
	Method       domain.PaymentMethod
	State        domain.SessionState
	AttemptsUsed int
}
