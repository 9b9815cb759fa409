package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/mocks/service_mocks"
	"github.com/dmikh/workmarket/internal/models"
)

func TestHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockUserService := service_mocks.NewMockUserService(ctrl)
	h := &Handler{userService: mockUserService, secretKey: "testsecret"}

	tests := []struct {
		name           string
		body           string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name: "worker registration",
			body: `{"login":"worker1","password":"password","role":"worker"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "worker1", "password", models.RoleWorker).Return(nil)
				mockUserService.EXPECT().GetUserByLogin(gomock.Any(), "worker1").Return(&models.User{ID: 1, Login: "worker1", Role: models.RoleWorker}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "role defaults to worker",
			body: `{"login":"worker2","password":"password"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "worker2", "password", models.RoleWorker).Return(nil)
				mockUserService.EXPECT().GetUserByLogin(gomock.Any(), "worker2").Return(&models.User{ID: 2, Login: "worker2", Role: models.RoleWorker}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid body",
			body:           `not json`,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing password",
			body:           `{"login":"worker1"}`,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "login conflict",
			body: `{"login":"worker1","password":"password"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "worker1", "password", models.RoleWorker).Return(apperrors.ErrUserAlreadyExists)
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "admin role rejected",
			body: `{"login":"root","password":"password","role":"admin"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "root", "password", models.RoleAdmin).Return(apperrors.ErrInvalidRequest)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "service failure",
			body: `{"login":"worker1","password":"password"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Register(gomock.Any(), "worker1", "password", models.RoleWorker).Return(errors.New("db error"))
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Register(w, req)
			resp := w.Result()
			if resp.StatusCode != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.wantStatusCode)
			}
			if resp.StatusCode == http.StatusOK {
				if auth := resp.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
					t.Errorf("got Authorization %q, want Bearer token", auth)
				}
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockUserService := service_mocks.NewMockUserService(ctrl)
	h := &Handler{userService: mockUserService, secretKey: "testsecret"}

	tests := []struct {
		name           string
		body           string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"login":"worker1","password":"password"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Authenticate(gomock.Any(), "worker1", "password").Return(nil)
				mockUserService.EXPECT().GetUserByLogin(gomock.Any(), "worker1").Return(&models.User{ID: 1, Login: "worker1", Role: models.RoleWorker}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "wrong credentials",
			body: `{"login":"worker1","password":"nope"}`,
			mockSetup: func() {
				mockUserService.EXPECT().Authenticate(gomock.Any(), "worker1", "nope").Return(apperrors.ErrInvalidCredentials)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid body",
			body:           ``,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Login(w, req)
			resp := w.Result()
			if resp.StatusCode != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.wantStatusCode)
			}
		})
	}
}
