package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tastevn/checkout-service/internal/checkout/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestCreateOrderWithPayment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["paymentMethod"] != "BANK_TRANSFER" {
			t.Errorf("unexpected method: %v", body["paymentMethod"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"id": 41,
				"orderNumber": "ORD-41",
				"totalAmount": 185000,
				"payment": {
					"id": 9,
					"paymentCode": "PAY123",
					"method": "BANK_TRANSFER",
					"status": "PENDING",
					"amount": 185000,
					"qrCodeData": "00020101",
					"bankCode": "VCB",
					"accountNumber": "0071000123456",
					"accountName": "TASTE VN KITCHEN"
				}
			}
		}`))
	}))
	defer srv.Close()

	g := New(testLogger(), srv.URL)
	order, err := g.CreateOrder(context.Background(), domain.OrderRequest{
		CustomerName:  "Nguyen Van A",
		PaymentMethod: domain.MethodBankTransfer,
		Items:         []domain.OrderItem{{MenuItemID: 7, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 41 || order.OrderNumber != "ORD-41" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.Payment == nil || order.Payment.PaymentCode != "PAY123" {
		t.Fatalf("payment not decoded: %+v", order.Payment)
	}
	if order.Payment.Display.BankCode != "VCB" {
		t.Fatalf("display data not decoded: %+v", order.Payment.Display)
	}
}

func TestCreateOrderCashHasNoPayment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": {"id": 5, "orderNumber": "ORD-5", "totalAmount": 90000}}`))
	}))
	defer srv.Close()

	g := New(testLogger(), srv.URL)
	order, err := g.CreateOrder(context.Background(), domain.OrderRequest{PaymentMethod: domain.MethodCash})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Payment != nil {
		t.Fatalf("expected nil payment, got %+v", order.Payment)
	}
}

func TestQueryPaymentStatusBothFieldNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want domain.PaymentStatus
	}{
		{"status", `{"success": true, "data": {"status": "PAID"}}`, domain.PaymentPaid},
		{"paymentStatus", `{"success": true, "data": {"paymentStatus": "PENDING"}}`, domain.PaymentPending},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.URL.Path, "/api/payments/PAY123/") {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := New(testLogger(), srv.URL)
			got, err := g.QueryPaymentStatus(context.Background(), "PAY123")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQueryPaymentStatusMissingStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": {}}`))
	}))
	defer srv.Close()

	g := New(testLogger(), srv.URL)
	if _, err := g.QueryPaymentStatus(context.Background(), "PAY123"); err == nil {
		t.Fatal("expected an error for a status-less response")
	}
}

func TestEnvelopeFailureIsAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success": false, "message": "menu item out of stock"}`))
	}))
	defer srv.Close()

	g := New(testLogger(), srv.URL)
	_, err := g.CreateOrder(context.Background(), domain.OrderRequest{PaymentMethod: domain.MethodCash})
	if err == nil || !strings.Contains(err.Error(), "menu item out of stock") {
		t.Fatalf("expected backend message in error, got %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/41/cancel" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["reason"] == "" {
			t.Error("expected a cancellation reason")
		}
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	g := New(testLogger(), srv.URL)
	if err := g.CancelOrder(context.Background(), 41, "customer abandoned payment"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
