package service

import (
	"context"
	"encoding/json"
	"fmt"
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

const paymentCurrency = "usd"

type PaymentService interface {
	CreateIntent(ctx context.Context, jobID uuid.UUID, workerID, businessID int64, amount decimal.Decimal) (*models.Payment, string, error)
	Confirm(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	History(ctx context.Context, userID int64, status models.PaymentStatus, page, limit int) ([]models.Payment, models.Pagination, error)
	GetWallet(ctx context.Context, userID int64) (models.Wallet, error)
}

type paymentService struct {
	txm            repository.TxManager
	payments       repository.PaymentRepository
	wallets        repository.WalletRepository
	jobs           repository.JobRepository
	users          repository.UserRepository
	outbox         repository.OutboxRepository
	notifications  repository.NotificationRepository
	processor      processor.ClientInterface
	notifier       ws.Broadcaster
	commissionRate decimal.Decimal
}

func NewPaymentService(
	txm repository.TxManager,
	payments repository.PaymentRepository,
	wallets repository.WalletRepository,
	jobs repository.JobRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	notifications repository.NotificationRepository,
	proc processor.ClientInterface,
	notifier ws.Broadcaster,
	commissionRate decimal.Decimal,
) PaymentService {
	return &paymentService{
		txm:            txm,
		payments:       payments,
		wallets:        wallets,
		jobs:           jobs,
		users:          users,
		outbox:         outbox,
		notifications:  notifications,
		processor:      proc,
		notifier:       notifier,
		commissionRate: commissionRate,
	}
}

// CreateIntent registers a charge intent with the external processor and
// records the payment in pending state. The client secret lets the business
// confirm the charge on the client side.
func (s *paymentService) CreateIntent(ctx context.Context, jobID uuid.UUID, workerID, businessID int64, amount decimal.Decimal) (*models.Payment, string, error) {
	if amount.IsNegative() {
		return nil, "", apperrors.ErrInvalidRequest
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, "", err
	}
	if job.BusinessID != businessID {
		return nil, "", apperrors.ErrForbidden
	}

	worker, err := s.users.GetUserByID(ctx, workerID)
	if err != nil {
		return nil, "", err
	}
	if worker.Role != models.RoleWorker {
		return nil, "", apperrors.ErrInvalidRequest
	}

	intent, err := s.processor.CreateIntent(ctx, amount, paymentCurrency, map[string]string{
		"job_id":    jobID.String(),
		"worker_id": fmt.Sprint(workerID),
	})
	if err != nil {
		return nil, "", err
	}

	payment, err := models.NewPayment(jobID, workerID, businessID, amount, s.commissionRate, models.PaymentMethodStripe)
	if err != nil {
		return nil, "", err
	}
	payment.IntentID = intent.ID

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, "", err
	}
	return payment, intent.ClientSecret, nil
}

// Confirm marks the payment completed and credits the worker's wallet with
// the worker share. Status transition, wallet credit and the platform event
// share one transaction, so the ledger cannot end up half-updated.
func (s *paymentService) Confirm(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, apperrors.ErrInvalidState
	}

	paidAt := time.Now()
	err = s.txm.WithinTx(ctx, func(q repository.Querier) error {
		if err := s.payments.CompleteTx(ctx, q, payment.ID, paidAt); err != nil {
			return err
		}
		if err := s.wallets.CreditTx(ctx, q, payment.WorkerID, payment.WorkerAmount); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"paymentId":    payment.ID,
			"workerId":     payment.WorkerID,
			"amount":       payment.Amount,
			"workerAmount": payment.WorkerAmount,
		})
		if err != nil {
			return err
		}
		return s.outbox.CreateTx(ctx, q, models.NewOutboxEvent(models.EventPaymentCompleted, payment.ID.String(), payload))
	})
	if err != nil {
		return nil, err
	}

	payment.Status = models.PaymentStatusCompleted
	payment.PaidAt = &paidAt

	s.notifyPayment(ctx, payment)
	return payment, nil
}

func (s *paymentService) History(ctx context.Context, userID int64, status models.PaymentStatus, page, limit int) ([]models.Payment, models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, repository.PaymentFilter{
		UserID: userID,
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return payments, models.NewPagination(page, limit, total), nil
}

func (s *paymentService) GetWallet(ctx context.Context, userID int64) (models.Wallet, error) {
	return s.wallets.GetWallet(ctx, userID)
}

// notifyPayment is best effort: the ledger is already consistent, a missed
// notification only degrades the UI.
func (s *paymentService) notifyPayment(ctx context.Context, payment *models.Payment) {
	payload, err := json.Marshal(map[string]any{
		"paymentId": payment.ID,
		"amount":    payment.WorkerAmount,
	})
	if err != nil {
		return
	}

	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    payment.WorkerID,
		Kind:      models.NotificationPaymentReceived,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		logger.Log.Error("failed to save payment notification", zap.Error(err))
	}

	s.notifier.NotifyUser(payment.WorkerID, ws.Event{Type: string(models.NotificationPaymentReceived), Data: payment})
}
