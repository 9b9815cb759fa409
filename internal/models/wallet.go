package models

import "github.com/shopspring/decimal"

// Wallet is the per-worker aggregate of available and reserved funds.
// It is mutated only through the wallet repository's credit/reserve/
// settle/release operations.
type Wallet struct {
	Balance          decimal.Decimal `json:"balance" db:"balance"`
	PendingBalance   decimal.Decimal `json:"pendingBalance" db:"pending_balance"`
	TotalEarnings    decimal.Decimal `json:"totalEarnings" db:"total_earnings"`
	TotalWithdrawals decimal.Decimal `json:"totalWithdrawals" db:"total_withdrawals"`
}
