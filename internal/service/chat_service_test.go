package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/mocks/repository_mocks"
	"github.com/dmikh/workmarket/internal/models"
)

func TestChatService_StartConversation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	tests := []struct {
		name         string
		initiatorID  int64
		recipientID  int64
		mockSetup    func(users *repository_mocks.MockUserRepository, chats *repository_mocks.MockChatRepository)
		wantWorker   int64
		wantBusiness int64
		wantErr      error
	}{
		{
			name:        "worker starts with business",
			initiatorID: 1,
			recipientID: 2,
			mockSetup: func(users *repository_mocks.MockUserRepository, chats *repository_mocks.MockChatRepository) {
				users.EXPECT().GetUserByID(ctx, int64(1)).Return(&models.User{ID: 1, Role: models.RoleWorker}, nil)
				users.EXPECT().GetUserByID(ctx, int64(2)).Return(&models.User{ID: 2, Role: models.RoleBusiness}, nil)
				chats.EXPECT().CreateConversation(ctx, gomock.AssignableToTypeOf(&models.Conversation{})).Return(nil)
			},
			wantWorker:   1,
			wantBusiness: 2,
		},
		{
			name:        "business starts with worker",
			initiatorID: 2,
			recipientID: 1,
			mockSetup: func(users *repository_mocks.MockUserRepository, chats *repository_mocks.MockChatRepository) {
				users.EXPECT().GetUserByID(ctx, int64(2)).Return(&models.User{ID: 2, Role: models.RoleBusiness}, nil)
				users.EXPECT().GetUserByID(ctx, int64(1)).Return(&models.User{ID: 1, Role: models.RoleWorker}, nil)
				chats.EXPECT().CreateConversation(ctx, gomock.Any()).Return(nil)
			},
			wantWorker:   1,
			wantBusiness: 2,
		},
		{
			name:        "same role pair is rejected",
			initiatorID: 1,
			recipientID: 3,
			mockSetup: func(users *repository_mocks.MockUserRepository, _ *repository_mocks.MockChatRepository) {
				users.EXPECT().GetUserByID(ctx, int64(1)).Return(&models.User{ID: 1, Role: models.RoleWorker}, nil)
				users.EXPECT().GetUserByID(ctx, int64(3)).Return(&models.User{ID: 3, Role: models.RoleWorker}, nil)
			},
			wantErr: apperrors.ErrInvalidRequest,
		},
		{
			name:        "self conversation is rejected",
			initiatorID: 1,
			recipientID: 1,
			mockSetup:   func(_ *repository_mocks.MockUserRepository, _ *repository_mocks.MockChatRepository) {},
			wantErr:     apperrors.ErrInvalidRequest,
		},
		{
			name:        "recipient not found",
			initiatorID: 1,
			recipientID: 99,
			mockSetup: func(users *repository_mocks.MockUserRepository, _ *repository_mocks.MockChatRepository) {
				users.EXPECT().GetUserByID(ctx, int64(1)).Return(&models.User{ID: 1, Role: models.RoleWorker}, nil)
				users.EXPECT().GetUserByID(ctx, int64(99)).Return(nil, apperrors.ErrUserNotFound)
			},
			wantErr: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chats := repository_mocks.NewMockChatRepository(ctrl)
			users := repository_mocks.NewMockUserRepository(ctrl)
			outbox := repository_mocks.NewMockOutboxRepository(ctrl)
			notifications := repository_mocks.NewMockNotificationRepository(ctrl)
			tt.mockSetup(users, chats)

			svc := NewChatService(chats, users, outbox, notifications, &stubBroadcaster{})
			conversation, err := svc.StartConversation(ctx, tt.initiatorID, tt.recipientID, nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, conversation)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, conversation)
			assert.Equal(t, tt.wantWorker, conversation.WorkerID)
			assert.Equal(t, tt.wantBusiness, conversation.BusinessID)
		})
	}
}

func TestChatService_SendMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	conversationID := uuid.New()
	conversation := func() *models.Conversation {
		return &models.Conversation{ID: conversationID, WorkerID: 1, BusinessID: 2}
	}

	tests := []struct {
		name      string
		senderID  int64
		body      string
		mockSetup func(chats *repository_mocks.MockChatRepository, outbox *repository_mocks.MockOutboxRepository, notifications *repository_mocks.MockNotificationRepository)
		wantErr   error
		notified  []int64
	}{
		{
			name:     "worker messages the business",
			senderID: 1,
			body:     "hello",
			mockSetup: func(chats *repository_mocks.MockChatRepository, outbox *repository_mocks.MockOutboxRepository, notifications *repository_mocks.MockNotificationRepository) {
				chats.EXPECT().GetConversationByID(ctx, conversationID).Return(conversation(), nil)
				chats.EXPECT().SaveMessage(ctx, gomock.AssignableToTypeOf(&models.Message{})).DoAndReturn(
					func(_ context.Context, m *models.Message) error {
						assert.Equal(t, "hello", m.Body)
						assert.Equal(t, int64(1), m.SenderID)
						return nil
					})
				notifications.EXPECT().Create(ctx, gomock.AssignableToTypeOf(&models.Notification{})).DoAndReturn(
					func(_ context.Context, n *models.Notification) error {
						assert.Equal(t, int64(2), n.UserID)
						assert.Equal(t, models.NotificationNewMessage, n.Kind)
						return nil
					})
				outbox.EXPECT().Create(ctx, gomock.AssignableToTypeOf(&models.OutboxEvent{})).Return(nil)
			},
			notified: []int64{2},
		},
		{
			name:      "empty body",
			senderID:  1,
			body:      "   ",
			mockSetup: func(_ *repository_mocks.MockChatRepository, _ *repository_mocks.MockOutboxRepository, _ *repository_mocks.MockNotificationRepository) {},
			wantErr:   apperrors.ErrInvalidRequest,
		},
		{
			name:     "outsider is forbidden",
			senderID: 99,
			body:     "hello",
			mockSetup: func(chats *repository_mocks.MockChatRepository, _ *repository_mocks.MockOutboxRepository, _ *repository_mocks.MockNotificationRepository) {
				chats.EXPECT().GetConversationByID(ctx, conversationID).Return(conversation(), nil)
			},
			wantErr: apperrors.ErrForbidden,
		},
		{
			name:     "conversation not found",
			senderID: 1,
			body:     "hello",
			mockSetup: func(chats *repository_mocks.MockChatRepository, _ *repository_mocks.MockOutboxRepository, _ *repository_mocks.MockNotificationRepository) {
				chats.EXPECT().GetConversationByID(ctx, conversationID).Return(nil, apperrors.ErrConversationNotFound)
			},
			wantErr: apperrors.ErrConversationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chats := repository_mocks.NewMockChatRepository(ctrl)
			users := repository_mocks.NewMockUserRepository(ctrl)
			outbox := repository_mocks.NewMockOutboxRepository(ctrl)
			notifications := repository_mocks.NewMockNotificationRepository(ctrl)
			tt.mockSetup(chats, outbox, notifications)

			notifier := &stubBroadcaster{}
			svc := NewChatService(chats, users, outbox, notifications, notifier)
			message, err := svc.SendMessage(ctx, tt.senderID, conversationID, tt.body)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, message)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, message)
			assert.Equal(t, []string{conversationID.String()}, notifier.broadcasts)
			assert.Equal(t, tt.notified, notifier.notified)
		})
	}
}

func TestChatService_ListMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	conversationID := uuid.New()

	chats := repository_mocks.NewMockChatRepository(ctrl)
	chats.EXPECT().GetConversationByID(ctx, conversationID).Return(&models.Conversation{ID: conversationID, WorkerID: 1, BusinessID: 2}, nil).Times(2)
	chats.EXPECT().ListMessages(ctx, conversationID, 1, 20).Return([]models.Message{{ConversationID: conversationID}}, nil)

	svc := &chatService{chats: chats}

	messages, err := svc.ListMessages(ctx, 1, conversationID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = svc.ListMessages(ctx, 99, conversationID, 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestChatService_Notifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	notifications := repository_mocks.NewMockNotificationRepository(ctrl)
	notifications.EXPECT().ListByUser(ctx, int64(1), 50).Return([]models.Notification{{UserID: 1}}, nil)
	notifications.EXPECT().MarkAllRead(ctx, int64(1)).Return(nil)

	svc := &chatService{notifications: notifications}

	got, err := svc.ListNotifications(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.NoError(t, svc.MarkNotificationsRead(ctx, 1))
}
