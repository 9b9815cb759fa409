package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	JobID         *uuid.UUID `json:"jobId,omitempty" db:"job_id"`
	WorkerID      int64      `json:"workerId" db:"worker_id"`
	BusinessID    int64      `json:"businessId" db:"business_id"`
	LastMessage   string     `json:"lastMessage,omitempty" db:"last_message"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// Participant reports whether the user takes part in the conversation.
func (c *Conversation) Participant(userID int64) bool {
	return c.WorkerID == userID || c.BusinessID == userID
}

// OtherParticipant returns the conversation member that is not userID.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.WorkerID == userID {
		return c.BusinessID
	}
	return c.WorkerID
}

type Message struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ConversationID uuid.UUID `json:"conversationId" db:"conversation_id"`
	SenderID       int64     `json:"senderId" db:"sender_id"`
	Body           string    `json:"body" db:"body"`
	SentAt         time.Time `json:"sentAt" db:"sent_at"`
}
