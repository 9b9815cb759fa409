package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/mocks/repository_mocks"
	"github.com/dmikh/workmarket/internal/models"
	"github.com/dmikh/workmarket/internal/processor"
	"github.com/dmikh/workmarket/internal/repository"
)

func TestWithdrawalService_RequestWithdrawal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	tests := []struct {
		name      string
		req       models.WithdrawalRequest
		mockSetup func(wallets *repository_mocks.MockWalletRepository, withdrawals *repository_mocks.MockWithdrawalRepository, outbox *repository_mocks.MockOutboxRepository)
		wantErr   error
	}{
		{
			name: "success reserves the amount",
			req: models.WithdrawalRequest{
				Amount:      decimal.NewFromInt(50),
				Method:      models.WithdrawalMethodPaypal,
				PaypalEmail: "worker@example.com",
			},
			mockSetup: func(wallets *repository_mocks.MockWalletRepository, withdrawals *repository_mocks.MockWithdrawalRepository, outbox *repository_mocks.MockOutboxRepository) {
				wallets.EXPECT().ReserveTx(ctx, gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
					func(_ context.Context, _ repository.Querier, _ int64, amount decimal.Decimal) error {
						assert.True(t, amount.Equal(decimal.NewFromInt(50)))
						return nil
					})
				withdrawals.EXPECT().CreateTx(ctx, gomock.Any(), gomock.AssignableToTypeOf(&models.Withdrawal{})).DoAndReturn(
					func(_ context.Context, _ repository.Querier, w *models.Withdrawal) error {
						assert.Equal(t, models.WithdrawalStatusPending, w.Status)
						assert.Equal(t, "worker@example.com", w.PaypalEmail)
						assert.WithinDuration(t, time.Now(), w.RequestedAt, time.Second)
						return nil
					})
				outbox.EXPECT().CreateTx(ctx, gomock.Any(), gomock.AssignableToTypeOf(&models.OutboxEvent{})).DoAndReturn(
					func(_ context.Context, _ repository.Querier, e *models.OutboxEvent) error {
						assert.Equal(t, models.EventWithdrawalRequested, e.Type)
						return nil
					})
			},
			wantErr: nil,
		},
		{
			name: "below the minimum",
			req: models.WithdrawalRequest{
				Amount: decimal.NewFromInt(5),
				Method: models.WithdrawalMethodPaypal,
			},
			mockSetup: func(_ *repository_mocks.MockWalletRepository, _ *repository_mocks.MockWithdrawalRepository, _ *repository_mocks.MockOutboxRepository) {},
			wantErr:   apperrors.ErrBelowMinimum,
		},
		{
			name: "unknown method",
			req: models.WithdrawalRequest{
				Amount: decimal.NewFromInt(50),
				Method: "cash",
			},
			mockSetup: func(_ *repository_mocks.MockWalletRepository, _ *repository_mocks.MockWithdrawalRepository, _ *repository_mocks.MockOutboxRepository) {},
			wantErr:   apperrors.ErrInvalidRequest,
		},
		{
			name: "insufficient funds rolls everything back",
			req: models.WithdrawalRequest{
				Amount: decimal.NewFromInt(500),
				Method: models.WithdrawalMethodBankTransfer,
				BankDetails: &models.BankDetails{
					AccountName:   "Worker",
					AccountNumber: "40817810000000000001",
				},
			},
			mockSetup: func(wallets *repository_mocks.MockWalletRepository, _ *repository_mocks.MockWithdrawalRepository, _ *repository_mocks.MockOutboxRepository) {
				wallets.EXPECT().ReserveTx(ctx, gomock.Any(), int64(1), gomock.Any()).Return(apperrors.ErrInsufficientFunds)
			},
			wantErr: apperrors.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txm := repository_mocks.NewMockTxManager(ctrl)
			passthroughTx(txm)
			withdrawals := repository_mocks.NewMockWithdrawalRepository(ctrl)
			wallets := repository_mocks.NewMockWalletRepository(ctrl)
			outbox := repository_mocks.NewMockOutboxRepository(ctrl)
			notifications := repository_mocks.NewMockNotificationRepository(ctrl)
			tt.mockSetup(wallets, withdrawals, outbox)

			svc := NewWithdrawalService(txm, withdrawals, wallets, outbox, notifications, &stubProcessorClient{}, &stubBroadcaster{})
			got, err := svc.RequestWithdrawal(ctx, 1, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.Amount.Equal(tt.req.Amount))
			assert.Equal(t, models.WithdrawalStatusPending, got.Status)
		})
	}
}

func TestWithdrawalService_ProcessWithdrawal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	withdrawalID := uuid.New()
	adminID := int64(42)

	pendingWithdrawal := func() *models.Withdrawal {
		return &models.Withdrawal{
			ID:          withdrawalID,
			WorkerID:    7,
			Amount:      decimal.NewFromInt(100),
			Method:      models.WithdrawalMethodStripe,
			AccountID:   "acct_1",
			Status:      models.WithdrawalStatusPending,
			RequestedAt: time.Now(),
		}
	}

	tests := []struct {
		name        string
		status      models.WithdrawalStatus
		reason      string
		proc        *stubProcessorClient
		mockSetup   func(withdrawals *repository_mocks.MockWithdrawalRepository, wallets *repository_mocks.MockWalletRepository, outbox *repository_mocks.MockOutboxRepository, notifications *repository_mocks.MockNotificationRepository)
		wantErr     error
		wantTxnID   string
		wantPayouts int
	}{
		{
			name:   "complete settles the reservation",
			status: models.WithdrawalStatusCompleted,
			proc:   &stubProcessorClient{payout: &processor.Payout{ID: "po_1"}},
			mockSetup: func(withdrawals *repository_mocks.MockWithdrawalRepository, wallets *repository_mocks.MockWalletRepository, outbox *repository_mocks.MockOutboxRepository, notifications *repository_mocks.MockNotificationRepository) {
				withdrawals.EXPECT().GetByID(ctx, withdrawalID).Return(pendingWithdrawal(), nil)
				withdrawals.EXPECT().Claim(ctx, withdrawalID).Return(nil)
				withdrawals.EXPECT().ResolveTx(ctx, gomock.Any(), withdrawalID, gomock.AssignableToTypeOf(repository.WithdrawalResolution{})).DoAndReturn(
					func(_ context.Context, _ repository.Querier, _ uuid.UUID, res repository.WithdrawalResolution) error {
						assert.Equal(t, models.WithdrawalStatusCompleted, res.Status)
						assert.Equal(t, adminID, res.ProcessedBy)
						assert.Equal(t, "po_1", res.TransactionID)
						return nil
					})
				wallets.EXPECT().SettleTx(ctx, gomock.Any(), int64(7), gomock.Any()).Return(nil)
				outbox.EXPECT().CreateTx(ctx, gomock.Any(), gomock.Any()).Return(nil)
				notifications.EXPECT().Create(ctx, gomock.Any()).Return(nil)
			},
			wantTxnID:   "po_1",
			wantPayouts: 1,
		},
		{
			name:   "reject releases the reservation",
			status: models.WithdrawalStatusRejected,
			reason: "bank details mismatch",
			proc:   &stubProcessorClient{},
			mockSetup: func(withdrawals *repository_mocks.MockWithdrawalRepository, wallets *repository_mocks.MockWalletRepository, outbox *repository_mocks.MockOutboxRepository, notifications *repository_mocks.MockNotificationRepository) {
				withdrawals.EXPECT().GetByID(ctx, withdrawalID).Return(pendingWithdrawal(), nil)
				withdrawals.EXPECT().Claim(ctx, withdrawalID).Return(nil)
				withdrawals.EXPECT().ResolveTx(ctx, gomock.Any(), withdrawalID, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ repository.Querier, _ uuid.UUID, res repository.WithdrawalResolution) error {
						assert.Equal(t, "bank details mismatch", res.RejectionReason)
						return nil
					})
				wallets.EXPECT().ReleaseTx(ctx, gomock.Any(), int64(7), gomock.Any()).Return(nil)
				outbox.EXPECT().CreateTx(ctx, gomock.Any(), gomock.Any()).Return(nil)
				notifications.EXPECT().Create(ctx, gomock.Any()).Return(nil)
			},
			wantPayouts: 0,
		},
		{
			name:      "unknown target status",
			status:    models.WithdrawalStatusProcessing,
			proc:      &stubProcessorClient{},
			mockSetup: func(_ *repository_mocks.MockWithdrawalRepository, _ *repository_mocks.MockWalletRepository, _ *repository_mocks.MockOutboxRepository, _ *repository_mocks.MockNotificationRepository) {},
			wantErr:   apperrors.ErrInvalidRequest,
		},
		{
			name:   "already resolved",
			status: models.WithdrawalStatusCompleted,
			proc:   &stubProcessorClient{payout: &processor.Payout{ID: "po_2"}},
			mockSetup: func(withdrawals *repository_mocks.MockWithdrawalRepository, _ *repository_mocks.MockWalletRepository, _ *repository_mocks.MockOutboxRepository, _ *repository_mocks.MockNotificationRepository) {
				resolved := pendingWithdrawal()
				resolved.Status = models.WithdrawalStatusRejected
				withdrawals.EXPECT().GetByID(ctx, withdrawalID).Return(resolved, nil)
			},
			wantErr: apperrors.ErrInvalidState,
		},
		{
			name:   "payout failure reopens the claim",
			status: models.WithdrawalStatusCompleted,
			proc:   &stubProcessorClient{payoutErr: errors.New("processor is down")},
			mockSetup: func(withdrawals *repository_mocks.MockWithdrawalRepository, _ *repository_mocks.MockWalletRepository, _ *repository_mocks.MockOutboxRepository, _ *repository_mocks.MockNotificationRepository) {
				withdrawals.EXPECT().GetByID(ctx, withdrawalID).Return(pendingWithdrawal(), nil)
				withdrawals.EXPECT().Claim(ctx, withdrawalID).Return(nil)
				withdrawals.EXPECT().Reopen(ctx, withdrawalID).Return(nil)
			},
			wantErr:     errors.New("processor is down"),
			wantPayouts: 1,
		},
		{
			name:   "lost claim race skips the payout",
			status: models.WithdrawalStatusCompleted,
			proc:   &stubProcessorClient{payout: &processor.Payout{ID: "po_3"}},
			mockSetup: func(withdrawals *repository_mocks.MockWithdrawalRepository, _ *repository_mocks.MockWalletRepository, _ *repository_mocks.MockOutboxRepository, _ *repository_mocks.MockNotificationRepository) {
				// another admin claimed the row between the read and the claim
				withdrawals.EXPECT().GetByID(ctx, withdrawalID).Return(pendingWithdrawal(), nil)
				withdrawals.EXPECT().Claim(ctx, withdrawalID).Return(apperrors.ErrInvalidState)
			},
			wantErr:     apperrors.ErrInvalidState,
			wantPayouts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txm := repository_mocks.NewMockTxManager(ctrl)
			passthroughTx(txm)
			withdrawals := repository_mocks.NewMockWithdrawalRepository(ctrl)
			wallets := repository_mocks.NewMockWalletRepository(ctrl)
			outbox := repository_mocks.NewMockOutboxRepository(ctrl)
			notifications := repository_mocks.NewMockNotificationRepository(ctrl)
			tt.mockSetup(withdrawals, wallets, outbox, notifications)

			notifier := &stubBroadcaster{}
			svc := NewWithdrawalService(txm, withdrawals, wallets, outbox, notifications, tt.proc, notifier)
			got, err := svc.ProcessWithdrawal(ctx, withdrawalID, adminID, tt.status, tt.reason)

			assert.Equal(t, tt.wantPayouts, tt.proc.payoutCalls)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.wantTxnID, got.TransactionID)
			assert.NotNil(t, got.ProcessedAt)
			assert.Equal(t, []int64{7}, notifier.notified)
		})
	}
}

func TestWithdrawalService_ListWithdrawals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	withdrawals := repository_mocks.NewMockWithdrawalRepository(ctrl)
	withdrawals.EXPECT().ListByWorker(ctx, int64(1), 1, 20).
		Return([]models.Withdrawal{{WorkerID: 1}, {WorkerID: 1}}, int64(2), nil)

	svc := &withdrawalService{withdrawals: withdrawals}
	got, pagination, err := svc.ListWithdrawals(ctx, 1, 1, 20)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(2), pagination.Total)
	assert.Equal(t, 1, pagination.Pages)
}
