package memory

import (
	"context"
	"sync"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

type ApartmentRepository struct {
	mu         sync.RWMutex
	apartments []domain.Apartment
}

func NewApartmentRepository(seed ...domain.Apartment) *ApartmentRepository {
	r := &ApartmentRepository{}
	for _, a := range seed {
		if a.ID == "" {
			a.ID = newID()
		}
		r.apartments = append(r.apartments, a)
	}
	return r
}

func (r *ApartmentRepository) List(_ context.Context) ([]domain.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Apartment, len(r.apartments))
	copy(out, r.apartments)
	return out, nil
}

func (r *ApartmentRepository) FindByID(_ context.Context, id string) (*domain.Apartment, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.apartments {
		if a.ID == id {
			clone := a
			return &clone, nil
		}
	}
	return nil, domain.ErrApartmentNotFound
}

type AnnouncementRepository struct {
	mu    sync.RWMutex
	items []domain.Announcement
}

func NewAnnouncementRepository() *AnnouncementRepository {
	return &AnnouncementRepository{}
}

func (r *AnnouncementRepository) List(_ context.Context) ([]domain.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Announcement, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *AnnouncementRepository) Create(_ context.Context, announcement *domain.Announcement) (*domain.InsertResult, error) {
	clone := *announcement
	clone.ID = newID()

	r.mu.Lock()
	r.items = append(r.items, clone)
	r.mu.Unlock()

	return &domain.InsertResult{Acknowledged: true, InsertedID: clone.ID}, nil
}

type PaymentRepository struct {
	mu       sync.RWMutex
	payments []domain.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) Create(_ context.Context, payment *domain.Payment) (*domain.InsertResult, error) {
	clone := *payment
	clone.ID = newID()

	r.mu.Lock()
	r.payments = append(r.payments, clone)
	r.mu.Unlock()

	return &domain.InsertResult{Acknowledged: true, InsertedID: clone.ID}, nil
}

func (r *PaymentRepository) ListByEmail(_ context.Context, email string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Payment{}
	for _, p := range r.payments {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out, nil
}

// AuditRepository keeps role changes in memory.
type AuditRepository struct {
	mu      sync.RWMutex
	changes []domain.RoleChange
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) InsertRoleChange(_ context.Context, change *domain.RoleChange) error {
	r.mu.Lock()
	r.changes = append(r.changes, *change)
	r.mu.Unlock()
	return nil
}

// RoleChanges returns a snapshot of recorded changes.
func (r *AuditRepository) RoleChanges() []domain.RoleChange {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RoleChange, len(r.changes))
	copy(out, r.changes)
	return out
}
