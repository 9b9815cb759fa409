package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmikh/workmarket/internal/apperrors"
)

func TestComputeCommission(t *testing.T) {
	tests := []struct {
		name           string
		amount         string
		rate           string
		wantCommission string
		wantWorker     string
	}{
		{name: "round amount", amount: "100", rate: "10", wantCommission: "10", wantWorker: "90"},
		{name: "fractional amount", amount: "99.99", rate: "10", wantCommission: "10", wantWorker: "89.99"},
		{name: "rounding to cents", amount: "33.33", rate: "15", wantCommission: "5", wantWorker: "28.33"},
		{name: "zero rate", amount: "100", rate: "0", wantCommission: "0", wantWorker: "100"},
		{name: "full rate", amount: "100", rate: "100", wantCommission: "100", wantWorker: "0"},
		{name: "zero amount", amount: "0", rate: "10", wantCommission: "0", wantWorker: "0"},
		{name: "cent amount", amount: "0.01", rate: "10", wantCommission: "0", wantWorker: "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			rate := decimal.RequireFromString(tt.rate)

			commission, worker := ComputeCommission(amount, rate)

			assert.True(t, commission.Equal(decimal.RequireFromString(tt.wantCommission)),
				"commission = %s, want %s", commission, tt.wantCommission)
			assert.True(t, worker.Equal(decimal.RequireFromString(tt.wantWorker)),
				"worker amount = %s, want %s", worker, tt.wantWorker)
			// the split never loses or mints money
			assert.True(t, commission.Add(worker).Equal(amount))
		})
	}
}

func TestNewPayment(t *testing.T) {
	jobID := uuid.New()

	tests := []struct {
		name    string
		amount  decimal.Decimal
		rate    decimal.Decimal
		wantErr error
	}{
		{name: "valid", amount: decimal.NewFromInt(100), rate: decimal.NewFromInt(10), wantErr: nil},
		{name: "negative amount", amount: decimal.NewFromInt(-1), rate: decimal.NewFromInt(10), wantErr: apperrors.ErrInvalidRequest},
		{name: "negative rate", amount: decimal.NewFromInt(100), rate: decimal.NewFromInt(-1), wantErr: apperrors.ErrInvalidRequest},
		{name: "rate above 100", amount: decimal.NewFromInt(100), rate: decimal.NewFromInt(101), wantErr: apperrors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPayment(jobID, 1, 2, tt.amount, tt.rate, PaymentMethodStripe)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, PaymentStatusPending, p.Status)
			assert.True(t, p.PlatformCommission.Add(p.WorkerAmount).Equal(p.Amount))
		})
	}
}

func TestPayment_SetAmount(t *testing.T) {
	p, err := NewPayment(uuid.New(), 1, 2, decimal.NewFromInt(100), decimal.NewFromInt(10), PaymentMethodStripe)
	require.NoError(t, err)

	require.NoError(t, p.SetAmount(decimal.NewFromInt(250)))
	assert.True(t, p.PlatformCommission.Equal(decimal.NewFromInt(25)))
	assert.True(t, p.WorkerAmount.Equal(decimal.NewFromInt(225)))

	assert.ErrorIs(t, p.SetAmount(decimal.NewFromInt(-1)), apperrors.ErrInvalidRequest)
}
