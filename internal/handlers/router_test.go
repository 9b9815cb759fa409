package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmikh/workmarket/internal/middleware"
)

func TestRouter_Routes(t *testing.T) {
	handler := &Handler{}
	router := NewRouter(handler, "testsecret", middleware.NewClientLimiter(1000, 1000))

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/user/register", http.StatusBadRequest},
		{"POST", "/api/user/login", http.StatusBadRequest},
		{"GET", "/api/jobs/", http.StatusUnauthorized},
		{"POST", "/api/payments/create", http.StatusUnauthorized},
		{"GET", "/api/payments/wallet", http.StatusUnauthorized},
		{"POST", "/api/payments/withdraw", http.StatusUnauthorized},
		{"PUT", "/api/admin/withdrawals/1/process", http.StatusUnauthorized},
		{"GET", "/api/conversations/", http.StatusUnauthorized},
		{"GET", "/api/notifications/", http.StatusUnauthorized},
		{"GET", "/api/ws", http.StatusUnauthorized},
		{"GET", "/notfound", http.StatusNotFound},
		{"DELETE", "/api/user/register", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		resp := w.Result()
		if resp.StatusCode != tt.status {
			t.Errorf("%s %s: got %d, want %d", tt.method, tt.path, resp.StatusCode, tt.status)
		}
	}
}
