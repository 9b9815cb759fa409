package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/models"
)

func seedJob(t *testing.T, db *sql.DB, businessID int64) uuid.UUID {
	t.Helper()
	jobID := uuid.New()
	_, err := db.Exec(`
		INSERT INTO jobs (id, title, budget, business_id) VALUES ($1, 'Landing page', 500, $2)
	`, jobID, businessID)
	require.NoError(t, err)
	return jobID
}

func newTestPayment(t *testing.T, jobID uuid.UUID) *models.Payment {
	t.Helper()
	p, err := models.NewPayment(jobID, 1, 2, decimal.RequireFromString("99.99"), decimal.NewFromInt(10), models.PaymentMethodStripe)
	require.NoError(t, err)
	p.IntentID = "pi_test"
	return p
}

func TestPaymentRepo_CreateAndGet(t *testing.T) {
	r := NewPaymentRepository(testDB)
	ctx := context.Background()

	seedUsers(t, testDB)
	jobID := seedJob(t, testDB, 2)
	p := newTestPayment(t, jobID)

	require.NoError(t, r.Create(ctx, p))

	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, jobID, got.JobID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("99.99")))
	assert.True(t, got.PlatformCommission.Equal(decimal.NewFromInt(10)))
	assert.True(t, got.WorkerAmount.Equal(decimal.RequireFromString("89.99")))
	assert.Equal(t, models.PaymentStatusPending, got.Status)
	assert.Equal(t, "pi_test", got.IntentID)
	assert.Nil(t, got.PaidAt)

	_, err = r.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
}

func TestPaymentRepo_CompleteTx(t *testing.T) {
	r := NewPaymentRepository(testDB)
	ctx := context.Background()

	seedUsers(t, testDB)
	jobID := seedJob(t, testDB, 2)
	p := newTestPayment(t, jobID)
	require.NoError(t, r.Create(ctx, p))

	paidAt := time.Now()
	require.NoError(t, r.CompleteTx(ctx, testDB, p.ID, paidAt))

	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	require.NotNil(t, got.PaidAt)
	assert.WithinDuration(t, paidAt, *got.PaidAt, time.Second)

	// a second completion finds no pending row
	assert.ErrorIs(t, r.CompleteTx(ctx, testDB, p.ID, time.Now()), apperrors.ErrInvalidState)
}

func TestPaymentRepo_List(t *testing.T) {
	r := NewPaymentRepository(testDB)
	ctx := context.Background()

	seedUsers(t, testDB)
	jobID := seedJob(t, testDB, 2)

	first := newTestPayment(t, jobID)
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, r.Create(ctx, first))

	second := newTestPayment(t, jobID)
	require.NoError(t, r.Create(ctx, second))
	require.NoError(t, r.CompleteTx(ctx, testDB, second.ID, time.Now()))

	t.Run("worker sees both", func(t *testing.T) {
		payments, total, err := r.List(ctx, PaymentFilter{UserID: 1, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, payments, 2)
		// newest first
		assert.Equal(t, second.ID, payments[0].ID)
		assert.Equal(t, first.ID, payments[1].ID)
	})

	t.Run("business sees the same payments", func(t *testing.T) {
		_, total, err := r.List(ctx, PaymentFilter{UserID: 2, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("status filter", func(t *testing.T) {
		payments, total, err := r.List(ctx, PaymentFilter{UserID: 1, Status: models.PaymentStatusCompleted, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, payments, 1)
		assert.Equal(t, second.ID, payments[0].ID)
	})

	t.Run("outsider sees nothing", func(t *testing.T) {
		payments, total, err := r.List(ctx, PaymentFilter{UserID: 3, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, payments)
	})
}
