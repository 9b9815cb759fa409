package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	List(ctx context.Context, page, limit int) ([]models.Job, int64, error)
}

type jobRepo struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, description, budget, business_id, worker_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, job.ID, job.Title, job.Description, job.Budget, job.BusinessID, job.WorkerID, job.Status, job.CreatedAt)
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, budget, business_id, worker_id, status, created_at
		FROM jobs WHERE id = $1
	`, id)

	var job models.Job
	err := row.Scan(&job.ID, &job.Title, &job.Description, &job.Budget,
		&job.BusinessID, &job.WorkerID, &job.Status, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context, page, limit int) ([]models.Job, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, budget, business_id, worker_id, status, created_at
		FROM jobs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		logger.Log.Error("failed to query jobs", zap.Error(err))
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Log.Error("failed to close rows", zap.Error(err))
		}
	}(rows)

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.ID, &job.Title, &job.Description, &job.Budget,
			&job.BusinessID, &job.WorkerID, &job.Status, &job.CreatedAt); err != nil {
			logger.Log.Error("failed to scan job", zap.Error(err))
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}
