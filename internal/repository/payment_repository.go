package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
)

type PaymentFilter struct {
	UserID int64
	Status models.PaymentStatus
	Page   int
	Limit  int
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]models.Payment, int64, error)
	CompleteTx(ctx context.Context, q Querier, id uuid.UUID, paidAt time.Time) error
}

type paymentRepo struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `
	id, job_id, worker_id, business_id, amount, commission_rate,
	platform_commission, worker_amount, status, method, intent_id, created_at, paid_at
`

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, job_id, worker_id, business_id, amount, commission_rate,
			platform_commission, worker_amount, status, method, intent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.JobID, p.WorkerID, p.BusinessID, p.Amount, p.CommissionRate,
		p.PlatformCommission, p.WorkerAmount, p.Status, p.Method, p.IntentID, p.CreatedAt)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) List(ctx context.Context, f PaymentFilter) ([]models.Payment, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM payments
		WHERE (worker_id = $1 OR business_id = $1) AND ($2 = '' OR status = $2)
	`, f.UserID, string(f.Status)).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE (worker_id = $1 OR business_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, f.UserID, string(f.Status), f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		logger.Log.Error("failed to query payments", zap.Error(err))
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Log.Error("failed to close rows", zap.Error(err))
		}
	}(rows)

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			logger.Log.Error("failed to scan payment", zap.Error(err))
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	return payments, total, rows.Err()
}

// CompleteTx flips a pending payment to completed. Zero matched rows means
// the payment has already left the pending state.
func (r *paymentRepo) CompleteTx(ctx context.Context, q Querier, id uuid.UUID, paidAt time.Time) error {
	res, err := q.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, paid_at = $2
		WHERE id = $3 AND status = $4
	`, models.PaymentStatusCompleted, paidAt, id, models.PaymentStatusPending)
	if err != nil {
		return err
	}
	return oneRowOr(res, apperrors.ErrInvalidState)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPayment(row scannable) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.JobID, &p.WorkerID, &p.BusinessID, &p.Amount, &p.CommissionRate,
		&p.PlatformCommission, &p.WorkerAmount, &p.Status, &p.Method, &p.IntentID, &p.CreatedAt, &p.PaidAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
