package service

import (
	"context"
	"errors"
	"time"

	"Medilink/internal/auth"
	"Medilink/internal/model"
	"Medilink/internal/repo"

	"go.uber.org/zap"
)

// ErrInvalidCredentials covers unknown account, wrong password and wrong
// role alike so login failures do not leak which part was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

var ErrUnknownUser = errors.New("no account for this email")

type UserService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, error)
	Login(ctx context.Context, email, password, role string) (*model.User, error)
	Info(ctx context.Context, email string) (*model.PublicProfile, error)
}

type userService struct {
	users  repo.UserRepository
	logger *zap.Logger
}

func NewUserService(users repo.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger,
	}
}

// Register creates a patient account. Doctors are provisioned outside the
// portal.
func (s *userService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:     email,
		Password:  hash,
		Name:      name,
		Role:      model.RolePatient,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials for the requested role.
func (s *userService) Login(ctx context.Context, email, password, role string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || user.Role != role {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, password) {
		s.logger.Warn("failed login attempt", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Info returns the public profile shown in the chat header.
func (s *userService) Info(ctx context.Context, email string) (*model.PublicProfile, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}

	profile := user.Public()
	return &profile, nil
}
