package memory

import (
	"context"
	"sync"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

func NewUserRepository(seed ...domain.User) *UserRepository {
	r := &UserRepository{}
	for _, u := range seed {
		if u.ID == "" {
			u.ID = newID()
		}
		r.users = append(r.users, u)
	}
	return r
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}

	clone := *user
	clone.ID = newID()
	r.users = append(r.users, clone)
	return &domain.InsertResult{Acknowledged: true, InsertedID: clone.ID}, nil
}

func (r *UserRepository) SetRoleByEmail(_ context.Context, email string, role domain.Role) (*domain.UpdateResult, error) {
	return r.setRole(func(u domain.User) bool { return u.Email == email }, role), nil
}

func (r *UserRepository) SetRoleByID(_ context.Context, id string, role domain.Role) (*domain.UpdateResult, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return r.setRole(func(u domain.User) bool { return u.ID == id }, role), nil
}

func (r *UserRepository) setRole(match func(domain.User) bool, role domain.Role) *domain.UpdateResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if match(r.users[i]) {
			modified := r.users[i].Role != role
			r.users[i].Role = role
			return updated(true, modified)
		}
	}
	return updated(false, false)
}
