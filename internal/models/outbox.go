package models

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
)

type EventType string

const (
	EventPaymentCompleted    EventType = "payment.completed"
	EventWithdrawalRequested EventType = "withdrawal.requested"
	EventWithdrawalProcessed EventType = "withdrawal.processed"
	EventMessageSent         EventType = "message.sent"
)

// OutboxEvent is a platform event written in the same transaction as the
// state change it describes, then published to kafka by the outbox poller.
type OutboxEvent struct {
	ID          uuid.UUID    `db:"id"`
	Type        EventType    `db:"event_type"`
	Key         string       `db:"key"`
	Payload     []byte       `db:"payload"`
	Status      OutboxStatus `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	PublishedAt *time.Time   `db:"published_at"`
}

func NewOutboxEvent(t EventType, key string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		ID:        uuid.New(),
		Type:      t,
		Key:       key,
		Payload:   payload,
		Status:    OutboxStatusPending,
		CreatedAt: time.Now(),
	}
}
