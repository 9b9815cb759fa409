package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
)

type ChatRepository interface {
	CreateConversation(ctx context.Context, c *models.Conversation) error
	GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error)
	SaveMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]models.Message, error)
}

type chatRepo struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) CreateConversation(ctx context.Context, c *models.Conversation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, job_id, worker_id, business_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.JobID, c.WorkerID, c.BusinessID, c.CreatedAt)
	return err
}

func (r *chatRepo) GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, job_id, worker_id, business_id, last_message, last_message_at, created_at
		FROM conversations WHERE id = $1
	`, id)

	var c models.Conversation
	err := row.Scan(&c.ID, &c.JobID, &c.WorkerID, &c.BusinessID, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *chatRepo) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, worker_id, business_id, last_message, last_message_at, created_at
		FROM conversations
		WHERE worker_id = $1 OR business_id = $1
		ORDER BY last_message_at DESC NULLS LAST
	`, userID)
	if err != nil {
		logger.Log.Error("failed to query conversations", zap.Error(err))
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Log.Error("failed to close rows", zap.Error(err))
		}
	}(rows)

	var conversations []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.JobID, &c.WorkerID, &c.BusinessID,
			&c.LastMessage, &c.LastMessageAt, &c.CreatedAt); err != nil {
			logger.Log.Error("failed to scan conversation", zap.Error(err))
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// SaveMessage stores the message and refreshes the conversation's
// last-message summary in one transaction.
func (r *chatRepo) SaveMessage(ctx context.Context, m *models.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Log.Error("rollback error", zap.Error(rbErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.ConversationID, m.SenderID, m.Body, m.SentAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message = $1, last_message_at = $2
		WHERE id = $3
	`, m.Body, m.SentAt, m.ConversationID)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

func (r *chatRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, body, sent_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY sent_at DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, (page-1)*limit)
	if err != nil {
		logger.Log.Error("failed to query messages", zap.Error(err))
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Log.Error("failed to close rows", zap.Error(err))
		}
	}(rows)

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.SentAt); err != nil {
			logger.Log.Error("failed to scan message", zap.Error(err))
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
