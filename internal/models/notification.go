package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationNewMessage         NotificationKind = "new_message"
	NotificationPaymentReceived    NotificationKind = "payment_received"
	NotificationWithdrawalResolved NotificationKind = "withdrawal_resolved"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    int64            `json:"-" db:"user_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Payload   json.RawMessage  `json:"payload" db:"payload"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	ReadAt    *time.Time       `json:"readAt,omitempty" db:"read_at"`
}
