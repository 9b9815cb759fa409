package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/models"
	"github.com/dmikh/workmarket/internal/repository"
)

type JobService interface {
	CreateJob(ctx context.Context, businessID int64, title, description string, budget decimal.Decimal) (*models.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, page, limit int) ([]models.Job, models.Pagination, error)
}

type jobService struct {
	repo repository.JobRepository
}

func NewJobService(repo repository.JobRepository) JobService {
	return &jobService{repo: repo}
}

func (s *jobService) CreateJob(ctx context.Context, businessID int64, title, description string, budget decimal.Decimal) (*models.Job, error) {
	if strings.TrimSpace(title) == "" || budget.IsNegative() {
		return nil, apperrors.ErrInvalidRequest
	}

	job := &models.Job{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Budget:      budget,
		BusinessID:  businessID,
		Status:      models.JobStatusOpen,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *jobService) ListJobs(ctx context.Context, page, limit int) ([]models.Job, models.Pagination, error) {
	jobs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return jobs, models.NewPagination(page, limit, total), nil
}
