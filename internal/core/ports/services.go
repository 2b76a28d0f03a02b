package ports

import (
	"context"
	"time"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

// AuthService issues and verifies access tokens.
type AuthService interface {
	IssueToken(ctx context.Context, subject domain.TokenSubject) (string, error)
	VerifyToken(token string) (*domain.TokenClaims, error)
}

// RegisterResult is returned by UserService.Register. When AlreadyExists is
// true nothing was written and Insert is nil.
type RegisterResult struct {
	Insert        *domain.InsertResult
	AlreadyExists bool
}

type UserService interface {
	Register(ctx context.Context, user domain.User) (*RegisterResult, error)
	List(ctx context.Context) ([]domain.User, error)
	// HasRole reads the stored role on every call; a missing identity yields false.
	HasRole(ctx context.Context, email string, role domain.Role) (bool, error)
}

// ApprovalResult carries both outcomes of an approval.
type ApprovalResult struct {
	Agreement domain.UpdateResult
	User      domain.UpdateResult
}

// AgreementService owns the agreement workflow and agreement records.
type AgreementService interface {
	Create(ctx context.Context, agreement domain.Agreement) (*domain.InsertResult, error)
	List(ctx context.Context) ([]domain.Agreement, error)
	FindByEmail(ctx context.Context, email string) (*domain.Agreement, error)
	Approve(ctx context.Context, actor, agreementID, applicantEmail string) (*ApprovalResult, error)
	Reject(ctx context.Context, actor, agreementID string) (*domain.UpdateResult, error)
	RemoveMember(ctx context.Context, actor, userID string) (*domain.UpdateResult, error)
}

type ListingService interface {
	ListApartments(ctx context.Context) ([]domain.Apartment, error)
	GetApartment(ctx context.Context, id string) (*domain.Apartment, error)
	ListAnnouncements(ctx context.Context) ([]domain.Announcement, error)
	PublishAnnouncement(ctx context.Context, announcement domain.Announcement) (*domain.InsertResult, error)
}

// PaymentIntentInput describes a card payment to be confirmed client-side.
type PaymentIntentInput struct {
	AmountCents int64
	Currency    string
}

// PaymentProcessor creates payment intents at the card processor and returns
// the client secret.
type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (string, error)
}

// IdempotencyStore claims a key once within ttl. Claim returns false when the
// key was already claimed. Release gives a claimed key back so the request can
// be retried.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

type PaymentService interface {
	CreateIntent(ctx context.Context, price float64) (string, error)
	Record(ctx context.Context, payerEmail string, payment domain.Payment, idempotencyKey string) (*domain.InsertResult, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Payment, error)
}

// RoleChangeRecorder accepts role change audit records for asynchronous persistence.
type RoleChangeRecorder interface {
	Record(change domain.RoleChange)
}
