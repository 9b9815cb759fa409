package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmikh/workmarket/internal/apperrors"
	"github.com/dmikh/workmarket/internal/models"
	"github.com/dmikh/workmarket/internal/repository"
)

type UserService interface {
	Register(ctx context.Context, login, password string, role models.Role) error
	Authenticate(ctx context.Context, login, password string) error
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Register(ctx context.Context, login, password string, role models.Role) error {
	if !role.Valid() || role == models.RoleAdmin {
		return apperrors.ErrInvalidRequest
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Login:    login,
		Password: string(hashedPassword),
		Role:     role,
	}

	err = s.repo.CreateUser(ctx, user)
	if errors.Is(err, apperrors.ErrUserAlreadyExists) {
		return err
	}
	return err
}

func (s *userService) Authenticate(ctx context.Context, login, password string) error {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return apperrors.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		return apperrors.ErrInvalidCredentials
	}

	return nil
}

func (s *userService) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.repo.GetUserByLogin(ctx, login)
}
