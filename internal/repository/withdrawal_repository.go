package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
)

type WithdrawalResolution struct {
	Status          models.WithdrawalStatus
	ProcessedBy     int64
	ProcessedAt     time.Time
	RejectionReason string
	TransactionID   string
}

type WithdrawalRepository interface {
	CreateTx(ctx context.Context, q Querier, w *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	ListByWorker(ctx context.Context, workerID int64, page, limit int) ([]models.Withdrawal, int64, error)
	Claim(ctx context.Context, id uuid.UUID) error
	Reopen(ctx context.Context, id uuid.UUID) error
	ResolveTx(ctx context.Context, q Querier, id uuid.UUID, res WithdrawalResolution) error
}

type withdrawalRepo struct {
	db *sql.DB
}

func NewWithdrawalRepository(db *sql.DB) WithdrawalRepository {
	return &withdrawalRepo{db: db}
}

const withdrawalColumns = `
	id, worker_id, amount, method, bank_details, paypal_email, account_id,
	status, rejection_reason, transaction_id, requested_at, processed_at, processed_by
`

func (r *withdrawalRepo) CreateTx(ctx context.Context, q Querier, w *models.Withdrawal) error {
	var bankDetails []byte
	if w.BankDetails != nil {
		var err error
		bankDetails, err = json.Marshal(w.BankDetails)
		if err != nil {
			return err
		}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO withdrawals (id, worker_id, amount, method, bank_details,
			paypal_email, account_id, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, w.ID, w.WorkerID, w.Amount, w.Method, bankDetails,
		w.PaypalEmail, w.AccountID, w.Status, w.RequestedAt)
	return err
}

func (r *withdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)

	w, err := scanWithdrawal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *withdrawalRepo) ListByWorker(ctx context.Context, workerID int64, page, limit int) ([]models.Withdrawal, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM withdrawals WHERE worker_id = $1`, workerID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE worker_id = $1
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3
	`, workerID, limit, (page-1)*limit)
	if err != nil {
		logger.Log.Error("failed to query withdrawals", zap.Error(err))
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Log.Error("failed to close rows", zap.Error(err))
		}
	}(rows)

	var withdrawals []models.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			logger.Log.Error("failed to scan withdrawal", zap.Error(err))
			return nil, 0, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, total, rows.Err()
}

// Claim flips a pending withdrawal to processing. The guarded update lets
// exactly one admin decision proceed past this point; a second concurrent
// claim sees zero matched rows.
func (r *withdrawalRepo) Claim(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE withdrawals SET status = $1 WHERE id = $2 AND status = $3
	`, models.WithdrawalStatusProcessing, id, models.WithdrawalStatusPending)
	if err != nil {
		return err
	}
	return oneRowOr(result, apperrors.ErrInvalidState)
}

// Reopen returns a claimed withdrawal to the pending queue after a failed
// dispatch so a later decision can retry it.
func (r *withdrawalRepo) Reopen(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE withdrawals SET status = $1 WHERE id = $2 AND status = $3
	`, models.WithdrawalStatusPending, id, models.WithdrawalStatusProcessing)
	if err != nil {
		return err
	}
	return oneRowOr(result, apperrors.ErrInvalidState)
}

// ResolveTx records the admin decision on a claimed withdrawal. Zero matched
// rows means the withdrawal was never claimed or already reached a terminal
// state.
func (r *withdrawalRepo) ResolveTx(ctx context.Context, q Querier, id uuid.UUID, res WithdrawalResolution) error {
	result, err := q.ExecContext(ctx, `
		UPDATE withdrawals
		SET status = $1, processed_by = $2, processed_at = $3,
		    rejection_reason = $4, transaction_id = $5
		WHERE id = $6 AND status = $7
	`, res.Status, res.ProcessedBy, res.ProcessedAt,
		res.RejectionReason, res.TransactionID, id, models.WithdrawalStatusProcessing)
	if err != nil {
		return err
	}
	return oneRowOr(result, apperrors.ErrInvalidState)
}

func scanWithdrawal(row scannable) (*models.Withdrawal, error) {
	var (
		w           models.Withdrawal
		bankDetails []byte
	)
	err := row.Scan(&w.ID, &w.WorkerID, &w.Amount, &w.Method, &bankDetails,
		&w.PaypalEmail, &w.AccountID, &w.Status, &w.RejectionReason,
		&w.TransactionID, &w.RequestedAt, &w.ProcessedAt, &w.ProcessedBy)
	if err != nil {
		return nil, err
	}
	if len(bankDetails) > 0 {
		w.BankDetails = &models.BankDetails{}
		if err := json.Unmarshal(bankDetails, w.BankDetails); err != nil {
			return nil, err
		}
	}
	return &w, nil
}
