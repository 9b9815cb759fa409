package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
	"github.com/dmikh/workmarket/internal/processor"
	"github.com/dmikh/workmarket/internal/repository"
	"github.com/dmikh/workmarket/internal/ws"
)

// minWithdrawalAmount is the platform-wide withdrawal floor.
var minWithdrawalAmount = decimal.NewFromInt(10)

type WithdrawalService interface {
	RequestWithdrawal(ctx context.Context, workerID int64, req models.WithdrawalRequest) (*models.Withdrawal, error)
	ListWithdrawals(ctx context.Context, workerID int64, page, limit int) ([]models.Withdrawal, models.Pagination, error)
	ProcessWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, status models.WithdrawalStatus, rejectionReason string) (*models.Withdrawal, error)
}

type withdrawalService struct {
	txm           repository.TxManager
	withdrawals   repository.WithdrawalRepository
	wallets       repository.WalletRepository
	outbox        repository.OutboxRepository
	notifications repository.NotificationRepository
	processor     processor.ClientInterface
	notifier      ws.Broadcaster
}

func NewWithdrawalService(
	txm repository.TxManager,
	withdrawals repository.WithdrawalRepository,
	wallets repository.WalletRepository,
	outbox repository.OutboxRepository,
	notifications repository.NotificationRepository,
	proc processor.ClientInterface,
	notifier ws.Broadcaster,
) WithdrawalService {
	return &withdrawalService{
		txm:           txm,
		withdrawals:   withdrawals,
		wallets:       wallets,
		outbox:        outbox,
		notifications: notifications,
		processor:     proc,
		notifier:      notifier,
	}
}

// RequestWithdrawal reserves the amount out of the worker's available
// balance and records the withdrawal in pending state, atomically. The
// guarded reservation makes concurrent requests race-safe: one of them
// fails with ErrInsufficientFunds instead of overdrawing.
func (s *withdrawalService) RequestWithdrawal(ctx context.Context, workerID int64, req models.WithdrawalRequest) (*models.Withdrawal, error) {
	if req.Amount.LessThan(minWithdrawalAmount) {
		return nil, apperrors.ErrBelowMinimum
	}

	withdrawal, err := models.NewWithdrawal(workerID, req.Amount, req.Method)
	if err != nil {
		return nil, err
	}
	withdrawal.BankDetails = req.BankDetails
	withdrawal.PaypalEmail = req.PaypalEmail
	withdrawal.AccountID = req.AccountID

	err = s.txm.WithinTx(ctx, func(q repository.Querier) error {
		if err := s.wallets.ReserveTx(ctx, q, workerID, withdrawal.Amount); err != nil {
			return err
		}
		if err := s.withdrawals.CreateTx(ctx, q, withdrawal); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"withdrawalId": withdrawal.ID,
			"workerId":     workerID,
			"amount":       withdrawal.Amount,
			"method":       withdrawal.Method,
		})
		if err != nil {
			return err
		}
		return s.outbox.CreateTx(ctx, q, models.NewOutboxEvent(models.EventWithdrawalRequested, withdrawal.ID.String(), payload))
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (s *withdrawalService) ListWithdrawals(ctx context.Context, workerID int64, page, limit int) ([]models.Withdrawal, models.Pagination, error) {
	withdrawals, total, err := s.withdrawals.ListByWorker(ctx, workerID, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return withdrawals, models.NewPagination(page, limit, total), nil
}

// ProcessWithdrawal applies the admin decision. A pending withdrawal moves
// exactly once to completed or rejected; both branches adjust the wallet in
// the same transaction as the status flip. The row is claimed (pending →
// processing) before the payout is dispatched, so two concurrent admins
// cannot both reach the processor; a payout failure reopens the claim and
// the withdrawal stays pending and retryable.
func (s *withdrawalService) ProcessWithdrawal(ctx context.Context, id uuid.UUID, adminID int64, status models.WithdrawalStatus, rejectionReason string) (*models.Withdrawal, error) {
	if status != models.WithdrawalStatusCompleted && status != models.WithdrawalStatusRejected {
		return nil, apperrors.ErrInvalidRequest
	}

	withdrawal, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status != models.WithdrawalStatusPending {
		return nil, apperrors.ErrInvalidState
	}

	if err := s.withdrawals.Claim(ctx, id); err != nil {
		return nil, err
	}

	resolution := repository.WithdrawalResolution{
		Status:      status,
		ProcessedBy: adminID,
		ProcessedAt: time.Now(),
	}

	if status == models.WithdrawalStatusCompleted {
		payout, err := s.processor.CreatePayout(ctx, withdrawal.Amount, paymentCurrency, payoutDestination(withdrawal))
		if err != nil {
			s.reopen(ctx, id)
			return nil, err
		}
		resolution.TransactionID = payout.ID
	} else {
		resolution.RejectionReason = rejectionReason
	}

	err = s.txm.WithinTx(ctx, func(q repository.Querier) error {
		if err := s.withdrawals.ResolveTx(ctx, q, withdrawal.ID, resolution); err != nil {
			return err
		}

		if status == models.WithdrawalStatusCompleted {
			if err := s.wallets.SettleTx(ctx, q, withdrawal.WorkerID, withdrawal.Amount); err != nil {
				return err
			}
		} else {
			if err := s.wallets.ReleaseTx(ctx, q, withdrawal.WorkerID, withdrawal.Amount); err != nil {
				return err
			}
		}

		payload, err := json.Marshal(map[string]any{
			"withdrawalId": withdrawal.ID,
			"workerId":     withdrawal.WorkerID,
			"amount":       withdrawal.Amount,
			"status":       status,
		})
		if err != nil {
			return err
		}
		return s.outbox.CreateTx(ctx, q, models.NewOutboxEvent(models.EventWithdrawalProcessed, withdrawal.ID.String(), payload))
	})
	if err != nil {
		// a completed payout already left the platform; keep the claim so
		// the row surfaces for operator review instead of double-paying
		if status == models.WithdrawalStatusRejected {
			s.reopen(ctx, id)
		}
		return nil, err
	}

	withdrawal.Status = resolution.Status
	withdrawal.ProcessedAt = &resolution.ProcessedAt
	withdrawal.ProcessedBy = &resolution.ProcessedBy
	withdrawal.RejectionReason = resolution.RejectionReason
	withdrawal.TransactionID = resolution.TransactionID

	s.notifyWithdrawal(ctx, withdrawal)
	return withdrawal, nil
}

// payoutDestination picks the processor-facing destination handle for the
// chosen withdrawal method.
func payoutDestination(w *models.Withdrawal) string {
	switch w.Method {
	case models.WithdrawalMethodPaypal:
		return w.PaypalEmail
	case models.WithdrawalMethodStripe:
		return w.AccountID
	default:
		if w.BankDetails != nil {
			return w.BankDetails.AccountNumber
		}
		return ""
	}
}

func (s *withdrawalService) reopen(ctx context.Context, id uuid.UUID) {
	if err := s.withdrawals.Reopen(ctx, id); err != nil {
		logger.Log.Error("failed to reopen withdrawal",
			zap.String("withdrawal", id.String()), zap.Error(err))
	}
}

func (s *withdrawalService) notifyWithdrawal(ctx context.Context, withdrawal *models.Withdrawal) {
	payload, err := json.Marshal(map[string]any{
		"withdrawalId": withdrawal.ID,
		"status":       withdrawal.Status,
		"amount":       withdrawal.Amount,
	})
	if err != nil {
		return
	}

	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    withdrawal.WorkerID,
		Kind:      models.NotificationWithdrawalResolved,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		logger.Log.Error("failed to save withdrawal notification", zap.Error(err))
	}

	s.notifier.NotifyUser(withdrawal.WorkerID, ws.Event{Type: string(models.NotificationWithdrawalResolved), Data: withdrawal})
}
