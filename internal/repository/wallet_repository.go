package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
)

// WalletRepository is the only mutation surface for wallet funds. Every
// mutation is a single guarded UPDATE, so two concurrent requests for the
// same worker cannot lose an update or drive the balance negative.
type WalletRepository interface {
	GetWallet(ctx context.Context, userID int64) (models.Wallet, error)
	CreditTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error
	ReserveTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error
	SettleTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error
	ReleaseTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error
}

type walletRepo struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) WalletRepository {
	return &walletRepo{db: db}
}

func (r *walletRepo) GetWallet(ctx context.Context, userID int64) (models.Wallet, error) {
	var w models.Wallet
	query := `
		SELECT balance, pending_balance, total_earnings, total_withdrawals FROM users WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&w.Balance, &w.PendingBalance, &w.TotalEarnings, &w.TotalWithdrawals)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		logger.Log.Error("failed to get wallet", zap.Error(err))
		return models.Wallet{}, err
	}
	return w, nil
}

// CreditTx adds a confirmed payment's worker share to the available balance
// and the lifetime earnings counter.
func (r *walletRepo) CreditTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error {
	res, err := q.ExecContext(ctx, `
		UPDATE users
		SET balance = balance + $1,
		    total_earnings = total_earnings + $1
		WHERE id = $2
	`, amount, userID)
	if err != nil {
		return err
	}
	return oneRowOr(res, apperrors.ErrUserNotFound)
}

// ReserveTx moves funds from balance to pending_balance for a new
// withdrawal request. Fails with ErrInsufficientFunds when the available
// balance does not cover the amount.
func (r *walletRepo) ReserveTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error {
	res, err := q.ExecContext(ctx, `
		UPDATE users
		SET balance = balance - $1,
		    pending_balance = pending_balance + $1
		WHERE id = $2 AND balance >= $1
	`, amount, userID)
	if err != nil {
		return err
	}
	return oneRowOr(res, apperrors.ErrInsufficientFunds)
}

// SettleTx finalizes a completed withdrawal: the reservation leaves
// pending_balance and is counted into total_withdrawals.
func (r *walletRepo) SettleTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error {
	res, err := q.ExecContext(ctx, `
		UPDATE users
		SET pending_balance = pending_balance - $1,
		    total_withdrawals = total_withdrawals + $1
		WHERE id = $2 AND pending_balance >= $1
	`, amount, userID)
	if err != nil {
		return err
	}
	return oneRowOr(res, apperrors.ErrInsufficientFunds)
}

// ReleaseTx returns a rejected withdrawal's reservation to the available
// balance.
func (r *walletRepo) ReleaseTx(ctx context.Context, q Querier, userID int64, amount decimal.Decimal) error {
	res, err := q.ExecContext(ctx, `
		UPDATE users
		SET pending_balance = pending_balance - $1,
		    balance = balance + $1
		WHERE id = $2 AND pending_balance >= $1
	`, amount, userID)
	if err != nil {
		return err
	}
	return oneRowOr(res, apperrors.ErrInsufficientFunds)
}

func oneRowOr(res sql.Result, notMatched error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notMatched
	}
	return nil
}
