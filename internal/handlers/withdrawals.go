package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmikh/workmarket/internal/middleware"
	"github.com/dmikh/workmarket/internal/models"
)

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	withdrawal, err := h.withdrawalService.RequestWithdrawal(r.Context(), workerID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "withdrawal": withdrawal})
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	page, limit := pageParams(r)

	withdrawals, pagination, err := h.withdrawalService.ListWithdrawals(r.Context(), workerID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if withdrawals == nil {
		withdrawals = []models.Withdrawal{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"withdrawals": withdrawals,
		"pagination":  pagination,
	})
}

type processWithdrawalRequest struct {
	Status          models.WithdrawalStatus `json:"status"`
	RejectionReason string                  `json:"rejectionReason"`
}

func (h *Handler) ProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid withdrawal id", http.StatusBadRequest)
		return
	}

	var req processWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	withdrawal, err := h.withdrawalService.ProcessWithdrawal(r.Context(), id, adminID, req.Status, req.RejectionReason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "withdrawal": withdrawal})
}
