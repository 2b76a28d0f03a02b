package ports

import (
	"context"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

// AgreementRepository defines persistence operations for tenancy agreements.
type AgreementRepository interface {
	Create(ctx context.Context, agreement *domain.Agreement) (*domain.InsertResult, error)
	FindByID(ctx context.Context, id string) (*domain.Agreement, error)
	FindByEmail(ctx context.Context, email string) (*domain.Agreement, error)
	List(ctx context.Context) ([]domain.Agreement, error)
	SetStatus(ctx context.Context, id string, status domain.AgreementStatus) (*domain.UpdateResult, error)
}
