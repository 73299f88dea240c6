// Package httpapi exposes the checkout flow to the presentation layer:
// submit, snapshot, cancel and retry.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tastevn/checkout-service/internal/checkout/application"
	"github.com/tastevn/checkout-service/internal/checkout/domain"
)

type Handler struct {
	log    *slog.Logger
	svc    *application.Service
	tracer trace.Tracer
}

func NewHandler(log *slog.Logger, svc *application.Service) *Handler {
	return &Handler{
		log:    log,
		svc:    svc,
		tracer: otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/checkout", h.submit)
	r.Get("/checkout/{sessionID}", h.snapshot)
	r.Post("/checkout/{sessionID}/cancel", h.cancel)
	r.Post("/checkout/{sessionID}/retry", h.retry)
	return r
}

type submitReq struct {
	CustomerName  string `json:"customerName"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	Ward          string `json:"ward"`
	District      string `json:"district"`
	City          string `json:"city"`
	Note          string `json:"note"`
	PaymentMethod string `json:"paymentMethod"`
	Items         []struct {
		MenuItemID int64  `json:"menuItemId"`
		Name       string `json:"name"`
		Quantity   int    `json:"quantity"`
	} `json:"items"`
}

type snapshotResp struct {
	SessionID     string                `json:"sessionId"`
	State         string                `json:"state"`
	ClientStatus  string                `json:"clientStatus"`
	AttemptsUsed  int                   `json:"attemptsUsed"`
	MaxAttempts   int                   `json:"maxAttempts"`
	OrderNumber   string                `json:"orderNumber"`
	TotalAmount   int64                 `json:"totalAmount"`
	Method        string                `json:"paymentMethod"`
	Payment       domain.PaymentDisplay `json:"payment"`
	RedirectAfter int64                 `json:"redirectAfterMs,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitCheckout")
	defer span.End()

	var req submitReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid body"})
		return
	}

	cart := make([]application.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		cart = append(cart, application.CartItem{MenuItemID: it.MenuItemID, Name: it.Name, Quantity: it.Quantity})
	}

	snap, err := h.svc.Submit(ctx, application.SubmitRequest{
		Form: application.FormState{
			CustomerName: req.CustomerName,
			Phone:        req.Phone,
			Street:       req.Street,
			Ward:         req.Ward,
			District:     req.District,
			City:         req.City,
			Note:         req.Note,
		},
		Cart:   cart,
		Method: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSnapshotResp(snap))
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResp(snap))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResp(snap))
}

func (h *Handler) retry(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Retry(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResp{Error: verr.Error()})
	case errors.Is(err, application.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	case errors.Is(err, application.ErrMissingPayment):
		writeJSON(w, http.StatusBadGateway, errorResp{Error: err.Error()})
	default:
		h.log.Error("checkout request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "internal error"})
	}
}

func toSnapshotResp(snap application.Snapshot) snapshotResp {
	resp := snapshotResp{
		SessionID:    snap.SessionID,
		State:        string(snap.State),
		ClientStatus: string(snap.ClientStatus),
		AttemptsUsed: snap.AttemptsUsed,
		MaxAttempts:  snap.MaxAttempts,
		OrderNumber:  snap.OrderNumber,
		TotalAmount:  snap.TotalAmount,
		Method:       string(snap.Method),
		Payment:      snap.Display,
	}
	if snap.State == domain.StateConfirmed {
		resp.RedirectAfter = snap.RedirectAfter.Milliseconds()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
