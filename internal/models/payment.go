package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmikh/workmarket/internal/apperrors"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type Payment struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	JobID              uuid.UUID       `json:"jobId" db:"job_id"`
	WorkerID           int64           `json:"workerId" db:"worker_id"`
	BusinessID         int64           `json:"businessId" db:"business_id"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	CommissionRate     decimal.Decimal `json:"commissionRate" db:"commission_rate"`
	PlatformCommission decimal.Decimal `json:"platformCommission" db:"platform_commission"`
	WorkerAmount       decimal.Decimal `json:"workerAmount" db:"worker_amount"`
	Status             PaymentStatus   `json:"status" db:"status"`
	Method             PaymentMethod   `json:"paymentMethod" db:"method"`
	IntentID           string          `json:"-" db:"intent_id"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	PaidAt             *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
}

// ComputeCommission splits a gross amount into the platform's cut and the
// worker's share. The commission is rounded to two decimal places so that
// commission + workerAmount always equals amount exactly.
func ComputeCommission(amount, rate decimal.Decimal) (commission, workerAmount decimal.Decimal) {
	commission = amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	workerAmount = amount.Sub(commission)
	return commission, workerAmount
}

func NewPayment(jobID uuid.UUID, workerID, businessID int64, amount, rate decimal.Decimal, method PaymentMethod) (*Payment, error) {
	if amount.IsNegative() {
		return nil, apperrors.ErrInvalidRequest
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperrors.ErrInvalidRequest
	}

	p := &Payment{
		ID:             uuid.New(),
		JobID:          jobID,
		WorkerID:       workerID,
		BusinessID:     businessID,
		Amount:         amount,
		CommissionRate: rate,
		Status:         PaymentStatusPending,
		Method:         method,
		CreatedAt:      time.Now(),
	}
	p.PlatformCommission, p.WorkerAmount = ComputeCommission(amount, rate)
	return p, nil
}

// SetAmount replaces the gross amount and rederives both split fields.
func (p *Payment) SetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.ErrInvalidRequest
	}
	p.Amount = amount
	p.PlatformCommission, p.WorkerAmount = ComputeCommission(p.Amount, p.CommissionRate)
	return nil
}
