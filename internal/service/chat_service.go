package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
	"github.com/dmikh/workmarket/internal/repository"
	"github.com/dmikh/workmarket/internal/ws"
)

type ChatService interface {
	StartConversation(ctx context.Context, initiatorID, recipientID int64, jobID *uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error)
	ListMessages(ctx context.Context, userID int64, conversationID uuid.UUID, page, limit int) ([]models.Message, error)
	SendMessage(ctx context.Context, senderID int64, conversationID uuid.UUID, body string) (*models.Message, error)
	ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID int64) error
}

type chatService struct {
	chats         repository.ChatRepository
	users         repository.UserRepository
	outbox        repository.OutboxRepository
	notifications repository.NotificationRepository
	notifier      ws.Broadcaster
}

func NewChatService(
	chats repository.ChatRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	notifications repository.NotificationRepository,
	notifier ws.Broadcaster,
) ChatService {
	return &chatService{
		chats:         chats,
		users:         users,
		outbox:        outbox,
		notifications: notifications,
		notifier:      notifier,
	}
}

func (s *chatService) StartConversation(ctx context.Context, initiatorID, recipientID int64, jobID *uuid.UUID) (*models.Conversation, error) {
	if initiatorID == recipientID {
		return nil, apperrors.ErrInvalidRequest
	}

	initiator, err := s.users.GetUserByID(ctx, initiatorID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.users.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	// a conversation always pairs a worker with a business
	var workerID, businessID int64
	switch {
	case initiator.Role == models.RoleWorker && recipient.Role == models.RoleBusiness:
		workerID, businessID = initiator.ID, recipient.ID
	case initiator.Role == models.RoleBusiness && recipient.Role == models.RoleWorker:
		workerID, businessID = recipient.ID, initiator.ID
	default:
		return nil, apperrors.ErrInvalidRequest
	}

	conversation := &models.Conversation{
		ID:         uuid.New(),
		JobID:      jobID,
		WorkerID:   workerID,
		BusinessID: businessID,
		CreatedAt:  time.Now(),
	}

	if err := s.chats.CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	return s.chats.ListConversations(ctx, userID)
}

func (s *chatService) ListMessages(ctx context.Context, userID int64, conversationID uuid.UUID, page, limit int) ([]models.Message, error) {
	conversation, err := s.chats.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.Participant(userID) {
		return nil, apperrors.ErrForbidden
	}
	return s.chats.ListMessages(ctx, conversationID, page, limit)
}

// SendMessage persists the message, then fans out: a broadcast to the
// conversation's subscribers, a personal notification to the recipient and
// a platform event. The fan-out is fire-and-forget.
func (s *chatService) SendMessage(ctx context.Context, senderID int64, conversationID uuid.UUID, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.ErrInvalidRequest
	}

	conversation, err := s.chats.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.Participant(senderID) {
		return nil, apperrors.ErrForbidden
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		SentAt:         time.Now(),
	}

	if err := s.chats.SaveMessage(ctx, message); err != nil {
		return nil, err
	}

	s.notifier.BroadcastToConversation(conversationID.String(), ws.Event{Type: "message", Data: message})
	s.notifyRecipient(ctx, conversation.OtherParticipant(senderID), message)

	payload, err := json.Marshal(map[string]any{
		"messageId":      message.ID,
		"conversationId": conversationID,
		"senderId":       senderID,
	})
	if err == nil {
		if err := s.outbox.Create(ctx, models.NewOutboxEvent(models.EventMessageSent, conversationID.String(), payload)); err != nil {
			logger.Log.Error("failed to record message event", zap.Error(err))
		}
	}

	return message, nil
}

func (s *chatService) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, 50)
}

func (s *chatService) MarkNotificationsRead(ctx context.Context, userID int64) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *chatService) notifyRecipient(ctx context.Context, recipientID int64, message *models.Message) {
	payload, err := json.Marshal(map[string]any{
		"conversationId": message.ConversationID,
		"senderId":       message.SenderID,
		"preview":        message.Body,
	})
	if err != nil {
		return
	}

	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    recipientID,
		Kind:      models.NotificationNewMessage,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		logger.Log.Error("failed to save message notification", zap.Error(err))
	}

	s.notifier.NotifyUser(recipientID, ws.Event{Type: string(models.NotificationNewMessage), Data: message})
}
