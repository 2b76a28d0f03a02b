package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register stores a new identity without a role. Registering an email that
// already exists is a no-op reported through RegisterResult.AlreadyExists.
func (s *UserService) Register(ctx context.Context, user domain.User) (*ports.RegisterResult, error) {
	user.Email = strings.TrimSpace(user.Email)

	_, err := s.repo.FindByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return &ports.RegisterResult{AlreadyExists: true}, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register user: %w", err)
	}

	user.ID = ""
	user.Role = domain.RoleNone
	user.CreatedAt = time.Now().UTC()

	res, err := s.repo.Create(ctx, &user)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, domain.ErrUserExists) {
			return &ports.RegisterResult{AlreadyExists: true}, nil
		}
		s.logger.Error().Err(err).Str("email", user.Email).Msg("failed to register user")
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.Info().Str("email", user.Email).Str("id", res.InsertedID).Msg("user registered")
	return &ports.RegisterResult{Insert: res}, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) HasRole(ctx context.Context, email string, role domain.Role) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup role: %w", err)
	}
	return user.HasRole(role), nil
}
