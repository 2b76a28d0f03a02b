package ports

import (
	"context"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

type ApartmentRepository interface {
	List(ctx context.Context) ([]domain.Apartment, error)
	FindByID(ctx context.Context, id string) (*domain.Apartment, error)
}

type AnnouncementRepository interface {
	List(ctx context.Context) ([]domain.Announcement, error)
	Create(ctx context.Context, announcement *domain.Announcement) (*domain.InsertResult, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.InsertResult, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Payment, error)
}

// AuditRepository persists role change records.
type AuditRepository interface {
	InsertRoleChange(ctx context.Context, change *domain.RoleChange) error
}
