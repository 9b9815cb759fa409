package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmikh/workmarket/internal/middleware"
	"github.com/dmikh/workmarket/internal/models"
)

type createPaymentRequest struct {
	JobID    uuid.UUID       `json:"jobId"`
	WorkerID int64           `json:"workerId"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	businessID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == uuid.Nil || req.WorkerID == 0 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	payment, clientSecret, err := h.paymentService.CreateIntent(r.Context(), req.JobID, req.WorkerID, businessID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"payment":      payment,
		"clientSecret": clientSecret,
	})
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}

	payment, err := h.paymentService.Confirm(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "payment": payment})
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	page, limit := pageParams(r)
	status := models.PaymentStatus(r.URL.Query().Get("status"))

	payments, pagination, err := h.paymentService.History(r.Context(), userID, status, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"payments":   payments,
		"pagination": pagination,
	})
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wallet, err := h.paymentService.GetWallet(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, wallet)
}
