package application

import (
	"fmt"
	"strings"

	"github.com/tastevn/checkout-service/internal/checkout/domain"
)

// ValidationError marks input problems caught before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var ErrEmptyCart = &ValidationError{Field: "items", Reason: "cart is empty"}

// FormState is the customer-entered checkout form.
type FormState struct {
	CustomerName string
	Phone        string
	Street       string
	Ward         string
	District     string
	City         string
	Note         string
}

// CartItem is one line of the client-held cart.
type CartItem struct {
	MenuItemID int64
	Name       string
	Quantity   int
}

// BuildOrderRequest assembles the order payload from form state. Pure: no
// network or timer side effects. The delivery address is encoded as a
// single formatted string; items that never resolved a menu item id are a
// hard error here, not silently dropped.
func BuildOrderRequest(form FormState, cart []CartItem, method domain.PaymentMethod) (domain.OrderRequest, error) {
	if len(cart) == 0 {
		return domain.OrderRequest{}, ErrEmptyCart
	}
	if method != domain.MethodCash && method != domain.MethodBankTransfer {
		return domain.OrderRequest{}, &ValidationError{Field: "paymentMethod", Reason: "unknown payment method"}
	}

	required := []struct {
		field string
		value string
	}{
		{"customerName", form.CustomerName},
		{"phone", form.Phone},
		{"street", form.Street},
		{"ward", form.Ward},
		{"district", form.District},
		{"city", form.City},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.OrderRequest{}, &ValidationError{Field: r.field, Reason: "required"}
		}
	}

	items := make([]domain.OrderItem, 0, len(cart))
	for i, it := range cart {
		if it.MenuItemID == 0 {
			return domain.OrderRequest{}, &ValidationError{
				Field:  fmt.Sprintf("items[%d]", i),
				Reason: "unresolved menu item id",
			}
		}
		if it.Quantity <= 0 {
			return domain.OrderRequest{}, &ValidationError{
				Field:  fmt.Sprintf("items[%d].quantity", i),
				Reason: "must be positive",
			}
		}
		items = append(items, domain.OrderItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}

	address := strings.Join([]string{
		strings.TrimSpace(form.Street),
		strings.TrimSpace(form.Ward),
		strings.TrimSpace(form.District),
		strings.TrimSpace(form.City),
	}, ", ")

	return domain.OrderRequest{
		CustomerName:    strings.TrimSpace(form.CustomerName),
		Phone:           strings.TrimSpace(form.Phone),
		DeliveryAddress: address,
		Note:            strings.TrimSpace(form.Note),
		Items:           items,
		PaymentMethod:   method,
	}, nil
}
