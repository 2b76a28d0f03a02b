package memory

import (
	"context"
	"sync"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

type AgreementRepository struct {
	mu         sync.RWMutex
	agreements []domain.Agreement
}

func NewAgreementRepository(seed ...domain.Agreement) *AgreementRepository {
	r := &AgreementRepository{}
	for _, a := range seed {
		if a.ID == "" {
			a.ID = newID()
		}
		r.agreements = append(r.agreements, a)
	}
	return r
}

func (r *AgreementRepository) Create(_ context.Context, agreement *domain.Agreement) (*domain.InsertResult, error) {
	clone := *agreement
	clone.ID = newID()

	r.mu.Lock()
	r.agreements = append(r.agreements, clone)
	r.mu.Unlock()

	return &domain.InsertResult{Acknowledged: true, InsertedID: clone.ID}, nil
}

func (r *AgreementRepository) FindByID(_ context.Context, id string) (*domain.Agreement, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return r.find(func(a domain.Agreement) bool { return a.ID == id })
}

// FindByEmail returns the first agreement filed by email.
func (r *AgreementRepository) FindByEmail(_ context.Context, email string) (*domain.Agreement, error) {
	return r.find(func(a domain.Agreement) bool { return a.Email == email })
}

func (r *AgreementRepository) find(match func(domain.Agreement) bool) (*domain.Agreement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.agreements {
		if match(a) {
			clone := a
			return &clone, nil
		}
	}
	return nil, domain.ErrAgreementNotFound
}

func (r *AgreementRepository) List(_ context.Context) ([]domain.Agreement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Agreement, len(r.agreements))
	copy(out, r.agreements)
	return out, nil
}

func (r *AgreementRepository) SetStatus(_ context.Context, id string, status domain.AgreementStatus) (*domain.UpdateResult, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.agreements {
		if r.agreements[i].ID == id {
			modified := r.agreements[i].Status != status
			r.agreements[i].Status = status
			return updated(true, modified), nil
		}
	}
	return updated(false, false), nil
}
