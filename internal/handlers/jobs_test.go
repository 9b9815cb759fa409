package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/mocks/service_mocks"
	"github.com/dmikh/workmarket/internal/models"
)

func TestHandler_CreateJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockJobService := service_mocks.NewMockJobService(ctrl)
	h := &Handler{jobService: mockJobService}

	tests := []struct {
		name           string
		body           string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"title":"Landing page","description":"5 screens","budget":"500"}`,
			mockSetup: func() {
				mockJobService.EXPECT().CreateJob(gomock.Any(), int64(2), "Landing page", "5 screens", gomock.Any()).
					Return(&models.Job{ID: uuid.New(), Title: "Landing page", Budget: decimal.NewFromInt(500)}, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "invalid body",
			body:           `not json`,
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "blank title",
			body: `{"title":"","budget":"500"}`,
			mockSetup: func() {
				mockJobService.EXPECT().CreateJob(gomock.Any(), int64(2), "", "", gomock.Any()).
					Return(nil, apperrors.ErrInvalidRequest)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewBufferString(tt.body))
			req = withUser(req, 2)
			w := httptest.NewRecorder()
			h.CreateJob(w, req)
			resp := w.Result()
			if resp.StatusCode != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.wantStatusCode)
			}
		})
	}
}

func TestHandler_GetJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockJobService := service_mocks.NewMockJobService(ctrl)
	h := &Handler{jobService: mockJobService}

	jobID := uuid.New()

	tests := []struct {
		name           string
		jobID          string
		mockSetup      func()
		wantStatusCode int
	}{
		{
			name:  "success",
			jobID: jobID.String(),
			mockSetup: func() {
				mockJobService.EXPECT().GetJob(gomock.Any(), jobID).Return(&models.Job{ID: jobID}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "not found",
			jobID: jobID.String(),
			mockSetup: func() {
				mockJobService.EXPECT().GetJob(gomock.Any(), jobID).Return(nil, apperrors.ErrJobNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "malformed id",
			jobID:          "42",
			mockSetup:      func() {},
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+tt.jobID, nil)
			req = withURLParam(req, "id", tt.jobID)
			w := httptest.NewRecorder()
			h.GetJob(w, req)
			resp := w.Result()
			if resp.StatusCode != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.wantStatusCode)
			}
		})
	}
}

func TestHandler_ListJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockJobService := service_mocks.NewMockJobService(ctrl)
	h := &Handler{jobService: mockJobService}

	mockJobService.EXPECT().ListJobs(gomock.Any(), 2, 10).
		Return([]models.Job{{ID: uuid.New()}}, models.Pagination{Page: 2, Limit: 10, Total: 11, Pages: 2}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?page=2&limit=10", nil)
	w := httptest.NewRecorder()
	h.ListJobs(w, req)
	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
