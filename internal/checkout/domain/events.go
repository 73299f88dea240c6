package domain

// Lifecycle events published when a checkout session reaches a terminal
// state. Event type names travel in the message headers.

const (
	EventTypeConfirmed = "checkout.confirmed"
	EventTypeFailed    = "checkout.failed"
	EventTypeTimedOut  = "checkout.timed_out"
	EventTypeCancelled = "checkout.cancelled"
)

type CheckoutConfirmed struct {
	SessionID    string `json:"session_id"`
	OrderID      int64  `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	PaymentCode  string `json:"payment_code"`
	Amount       int64  `json:"amount"`
	AttemptsUsed int    `json:"attempts_used"`
}

type CheckoutFailed struct {
	SessionID   string `json:"session_id"`
	OrderID     int64  `json:"order_id"`
	PaymentCode string `json:"payment_code"`
	Reason      string `json:"reason"`
}

type CheckoutTimedOut struct {
	SessionID    string `json:"session_id"`
	OrderID      int64  `json:"order_id"`
	PaymentCode  string `json:"payment_code"`
	AttemptsUsed int    `json:"attempts_used"`
}

type CheckoutCancelled struct {
	SessionID   string `json:"session_id"`
	OrderID     int64  `json:"order_id"`
	PaymentCode string `json:"payment_code"`
}
