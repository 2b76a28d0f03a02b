package ports

import (
	"context"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

// UserRepository defines persistence operations for identities.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no identity has that email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Create returns domain.ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.InsertResult, error)
	SetRoleByEmail(ctx context.Context, email string, role domain.Role) (*domain.UpdateResult, error)
	SetRoleByID(ctx context.Context, id string, role domain.Role) (*domain.UpdateResult, error)
}
