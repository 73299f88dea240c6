package domain

import "time"

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// PaymentStatus is the server-authoritative status reported by the backend.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentExpired   PaymentStatus = "EXPIRED"
)

type OrderItem struct {
	MenuItemID int64 `json:"menuItemId"`
	Quantity   int   `json:"quantity"`
}

// OrderRequest is the payload submitted to the backend to create an order.
type OrderRequest struct {
	CustomerName    string
	Phone           string
	DeliveryAddress string
	Note            string
	Items           []OrderItem
	PaymentMethod   PaymentMethod
}

// Order is the immutable snapshot returned by the backend on creation.
// Non-cash orders carry an embedded Payment record.
type Order struct {
	ID          int64
	OrderNumber string
	TotalAmount int64
	Payment     *Payment
	CreatedAt   time.Time
}

// Payment is the sub-entity of Order for non-cash methods. PaymentCode is
// the correlation key used for status polling, distinct from OrderNumber.
type Payment struct {
	ID          int64
	PaymentCode string
	Method      PaymentMethod
	Status      PaymentStatus
	Amount      int64
	Display     PaymentDisplay
}

// PaymentDisplay holds the data rendered on the payment screen.
type PaymentDisplay struct {
	QRCodeData    string `json:"qrCodeData,omitempty"`
	BankCode      string `json:"bankCode,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
}
