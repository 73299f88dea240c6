// Package domain holds the checkout value types and the payment-session
// state machine. Transition is pure so the lifecycle is testable without
// timers or network.
package domain

// SessionState is the lifecycle state of one payment-confirmation session.
type SessionState string

const (
	StateAwaitingPayment SessionState = "awaiting_payment"
	StateConfirmed       SessionState = "confirmed"
	StateFailed          SessionState = "failed"
	StateTimedOut        SessionState = "timed_out"
	StateCancelled       SessionState = "cancelled"
)

// Terminal reports whether s has no outgoing transitions.
func (s SessionState) Terminal() bool {
	switch s {
	case StateConfirmed, StateFailed, StateTimedOut, StateCancelled:
		return true
	}
	return false
}

// Event is a classified signal driving the session state machine.
type Event string

const (
	EventConfirm Event = "confirm"
	EventFail    Event = "fail"
	EventExhaust Event = "exhaust"
	EventCancel  Event = "cancel"
)

// Transition applies e to s. Terminal states absorb every event, so a
// duplicate or late signal is a no-op rather than an error.
func Transition(s SessionState, e Event) SessionState {
	if s.Terminal() {
		return s
	}
	switch e {
	case EventConfirm:
		return StateConfirmed
	case EventFail:
		return StateFailed
	case EventExhaust:
		return StateTimedOut
	case EventCancel:
		return StateCancelled
	}
	return s
}

// Classify maps a backend payment status to a session event. PENDING and
// unrecognized statuses produce no event: polling continues.
func Classify(status PaymentStatus) (Event, bool) {
	switch status {
	case PaymentPaid, PaymentCompleted:
		return EventConfirm, true
	case PaymentFailed, PaymentCancelled, PaymentExpired:
		return EventFail, true
	}
	return "", false
}

// ClientStatus is the coarse status exposed to the presentation layer.
type ClientStatus string

const (
	ClientPending   ClientStatus = "pending"
	ClientChecking  ClientStatus = "checking"
	ClientConfirmed ClientStatus = "confirmed"
	ClientFailed    ClientStatus = "failed"
)

// DeriveClientStatus reduces a session state to the presentation vocabulary.
// Timeout and cancellation both read as failed here; the full state travels
// alongside so the UI can word those outcomes differently.
func DeriveClientStatus(s SessionState, attempts int) ClientStatus {
	switch s {
	case StateConfirmed:
		return ClientConfirmed
	case StateFailed, StateTimedOut, StateCancelled:
		return ClientFailed
	}
	if attempts > 0 {
		return ClientChecking
	}
	return ClientPending
}
