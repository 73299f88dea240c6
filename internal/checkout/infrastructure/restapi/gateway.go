// Package restapi implements the OrderGateway port against the restaurant
// backend's REST API. Responses arrive in a {success, message, data}
// envelope; anything that is not a fully parsed, successful envelope is an
// error for the caller to classify.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tastevn/checkout-service/internal/checkout/domain"
)

type Gateway struct {
	log     *slog.Logger
	baseURL string
	client  *http.Client
}

func New(log *slog.Logger, baseURL string) *Gateway {
	return &Gateway{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type createOrderReq struct {
	CustomerName    string             `json:"customerName"`
	Phone           string             `json:"phone"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Note            string             `json:"note,omitempty"`
	PaymentMethod   string             `json:"paymentMethod"`
	Items           []domain.OrderItem `json:"items"`
}

type orderData struct {
	ID          int64        `json:"id"`
	OrderNumber string       `json:"orderNumber"`
	TotalAmount int64        `json:"totalAmount"`
	Payment     *paymentData `json:"payment"`
}

type paymentData struct {
	ID            int64  `json:"id"`
	PaymentCode   string `json:"paymentCode"`
	Method        string `json:"method"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	QRCodeData    string `json:"qrCodeData"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// statusData tolerates both field names the backend has used for the
// payment status.
type statusData struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

func (g *Gateway) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	body := createOrderReq{
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
		PaymentMethod:   string(req.PaymentMethod),
		Items:           req.Items,
	}
	env, err := g.do(ctx, http.MethodPost, "/api/orders", body)
	if err != nil {
		return domain.Order{}, err
	}

	var data orderData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return domain.Order{}, fmt.Errorf("decode order: %w", err)
	}
	order := domain.Order{
		ID:          data.ID,
		OrderNumber: data.OrderNumber,
		TotalAmount: data.TotalAmount,
		CreatedAt:   time.Now().UTC(),
	}
	if p := data.Payment; p != nil {
		order.Payment = &domain.Payment{
			ID:          p.ID,
			PaymentCode: p.PaymentCode,
			Method:      domain.PaymentMethod(p.Method),
			Status:      domain.PaymentStatus(p.Status),
			Amount:      p.Amount,
			Display: domain.PaymentDisplay{
				QRCodeData:    p.QRCodeData,
				BankCode:      p.BankCode,
				AccountNumber: p.AccountNumber,
				AccountName:   p.AccountName,
			},
		}
	}
	return order, nil
}

func (g *Gateway) QueryPaymentStatus(ctx context.Context, paymentCode string) (domain.PaymentStatus, error) {
	env, err := g.do(ctx, http.MethodGet, "/api/payments/"+paymentCode+"/status", nil)
	if err != nil {
		return "", err
	}
	var data statusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("decode payment status: %w", err)
	}
	status := data.Status
	if status == "" {
		status = data.PaymentStatus
	}
	if status == "" {
		return "", fmt.Errorf("payment status missing from response")
	}
	return domain.PaymentStatus(status), nil
}

func (g *Gateway) CancelOrder(ctx context.Context, orderID int64, reason string) error {
	body := map[string]string{"reason": reason}
	_, err := g.do(ctx, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", orderID), body)
	return err
}

func (g *Gateway) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%s %s: backend rejected request: %s", method, path, msg)
	}
	return &env, nil
}
