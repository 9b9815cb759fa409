package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmikh/workmarket/internal/apperrors"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusRejected   WithdrawalStatus = "rejected"
)

type WithdrawalMethod string

const (
	WithdrawalMethodBankTransfer WithdrawalMethod = "bank_transfer"
	WithdrawalMethodPaypal       WithdrawalMethod = "paypal"
	WithdrawalMethodStripe       WithdrawalMethod = "stripe"
)

func (m WithdrawalMethod) Valid() bool {
	switch m {
	case WithdrawalMethodBankTransfer, WithdrawalMethodPaypal, WithdrawalMethodStripe:
		return true
	}
	return false
}

type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	RoutingNumber string `json:"routingNumber"`
}

type WithdrawalRequest struct {
	Amount      decimal.Decimal  `json:"amount"`
	Method      WithdrawalMethod `json:"method"`
	BankDetails *BankDetails     `json:"bankDetails,omitempty"`
	PaypalEmail string           `json:"paypalEmail,omitempty"`
	AccountID   string           `json:"stripeAccountId,omitempty"`
}

type Withdrawal struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	WorkerID        int64            `json:"workerId" db:"worker_id"`
	Amount          decimal.Decimal  `json:"amount" db:"amount"`
	Method          WithdrawalMethod `json:"method" db:"method"`
	BankDetails     *BankDetails     `json:"bankDetails,omitempty" db:"bank_details"`
	PaypalEmail     string           `json:"paypalEmail,omitempty" db:"paypal_email"`
	AccountID       string           `json:"accountId,omitempty" db:"account_id"`
	Status          WithdrawalStatus `json:"status" db:"status"`
	RejectionReason string           `json:"rejectionReason,omitempty" db:"rejection_reason"`
	TransactionID   string           `json:"transactionId,omitempty" db:"transaction_id"`
	RequestedAt     time.Time        `json:"requestedAt" db:"requested_at"`
	ProcessedAt     *time.Time       `json:"processedAt,omitempty" db:"processed_at"`
	ProcessedBy     *int64           `json:"processedBy,omitempty" db:"processed_by"`
}

func NewWithdrawal(workerID int64, amount decimal.Decimal, method WithdrawalMethod) (*Withdrawal, error) {
	if amount.LessThan(decimal.NewFromInt(1)) {
		return nil, apperrors.ErrInvalidRequest
	}
	if !method.Valid() {
		return nil, apperrors.ErrInvalidRequest
	}

	return &Withdrawal{
		ID:          uuid.New(),
		WorkerID:    workerID,
		Amount:      amount,
		Method:      method,
		Status:      WithdrawalStatusPending,
		RequestedAt: time.Now(),
	}, nil
}

// Terminal reports whether the withdrawal can no longer change state.
func (w *Withdrawal) Terminal() bool {
	return w.Status == WithdrawalStatusCompleted || w.Status == WithdrawalStatusRejected
}
