package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/mocks/repository_mocks"
	"github.com/dmikh/workmarket/internal/models"
)

func TestUserService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	tests := []struct {
		name      string
		login     string
		password  string
		role      models.Role
		mockSetup func(m *repository_mocks.MockUserRepository)
		wantErr   error
	}{
		{
			name:     "worker registration",
			login:    "worker1",
			password: "password",
			role:     models.RoleWorker,
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().CreateUser(ctx, gomock.AssignableToTypeOf(&models.User{})).DoAndReturn(
					func(_ context.Context, u *models.User) error {
						assert.Equal(t, "worker1", u.Login)
						assert.Equal(t, models.RoleWorker, u.Role)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password")))
						return nil
					}).Times(1)
			},
			wantErr: nil,
		},
		{
			name:     "business registration",
			login:    "acme",
			password: "password",
			role:     models.RoleBusiness,
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().CreateUser(ctx, gomock.Any()).Return(nil).Times(1)
			},
			wantErr: nil,
		},
		{
			name:      "admin role is not self-service",
			login:     "root",
			password:  "password",
			role:      models.RoleAdmin,
			mockSetup: func(m *repository_mocks.MockUserRepository) {},
			wantErr:   apperrors.ErrInvalidRequest,
		},
		{
			name:      "unknown role",
			login:     "worker1",
			password:  "password",
			role:      "manager",
			mockSetup: func(m *repository_mocks.MockUserRepository) {},
			wantErr:   apperrors.ErrInvalidRequest,
		},
		{
			name:     "login is taken",
			login:    "worker1",
			password: "password",
			role:     models.RoleWorker,
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().CreateUser(ctx, gomock.Any()).Return(apperrors.ErrUserAlreadyExists).Times(1)
			},
			wantErr: apperrors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := repository_mocks.NewMockUserRepository(ctrl)
			tt.mockSetup(mockRepo)

			svc := NewUserService(mockRepo)
			err := svc.Register(ctx, tt.login, tt.password, tt.role)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	assert.NoError(t, err)

	tests := []struct {
		name      string
		login     string
		password  string
		mockSetup func(m *repository_mocks.MockUserRepository)
		wantErr   error
	}{
		{
			name:     "valid credentials",
			login:    "worker1",
			password: "password",
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().GetUserByLogin(ctx, "worker1").Return(&models.User{ID: 1, Login: "worker1", Password: string(hash)}, nil)
			},
			wantErr: nil,
		},
		{
			name:     "wrong password",
			login:    "worker1",
			password: "nope",
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().GetUserByLogin(ctx, "worker1").Return(&models.User{ID: 1, Login: "worker1", Password: string(hash)}, nil)
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			login:    "ghost",
			password: "password",
			mockSetup: func(m *repository_mocks.MockUserRepository) {
				m.EXPECT().GetUserByLogin(ctx, "ghost").Return(nil, errors.New("sql: no rows in result set"))
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := repository_mocks.NewMockUserRepository(ctrl)
			tt.mockSetup(mockRepo)

			svc := NewUserService(mockRepo)
			err := svc.Authenticate(ctx, tt.login, tt.password)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
