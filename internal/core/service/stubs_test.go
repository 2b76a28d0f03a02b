package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
	"github.com/skyline-residence/building-api/internal/infrastructure/db/memory"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Failure-injecting repositories
// ---------------------------------------------------------------------------

type flakyUserRepo struct {
	*memory.UserRepository
	findErr    error
	createErr  error
	setRoleErr error
}

func (r *flakyUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.UserRepository.FindByEmail(ctx, email)
}

func (r *flakyUserRepo) Create(ctx context.Context, u *domain.User) (*domain.InsertResult, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.UserRepository.Create(ctx, u)
}

func (r *flakyUserRepo) SetRoleByEmail(ctx context.Context, email string, role domain.Role) (*domain.UpdateResult, error) {
	if r.setRoleErr != nil {
		return nil, r.setRoleErr
	}
	return r.UserRepository.SetRoleByEmail(ctx, email, role)
}

type flakyAgreementRepo struct {
	*memory.AgreementRepository
	// setStatusErrs is consumed one entry per SetStatus call; nil entries succeed.
	setStatusErrs []error
	setStatusLog  []domain.AgreementStatus
}

func (r *flakyAgreementRepo) SetStatus(ctx context.Context, id string, status domain.AgreementStatus) (*domain.UpdateResult, error) {
	r.setStatusLog = append(r.setStatusLog, status)
	if len(r.setStatusErrs) > 0 {
		err := r.setStatusErrs[0]
		r.setStatusErrs = r.setStatusErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return r.AgreementRepository.SetStatus(ctx, id, status)
}

// atomicTx pretends to be a real transaction so compensation is skipped.
type atomicTx struct{ calls int }

func (t *atomicTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func (t *atomicTx) Atomic() bool { return true }

type recordingAudit struct {
	mu      sync.Mutex
	changes []domain.RoleChange
}

func (r *recordingAudit) Record(c domain.RoleChange) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

type stubProcessor struct {
	secret string
	err    error
	last   ports.PaymentIntentInput
}

func (p *stubProcessor) CreatePaymentIntent(_ context.Context, in ports.PaymentIntentInput) (string, error) {
	p.last = in
	return p.secret, p.err
}

type stubIdempotency struct {
	seen     map[string]bool
	err      error
	released []string
}

func (s *stubIdempotency) Claim(_ context.Context, scope, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	k := scope + ":" + key
	if s.seen[k] {
		return false, nil
	}
	s.seen[k] = true
	return true, nil
}

func (s *stubIdempotency) Release(_ context.Context, scope, key string) error {
	k := scope + ":" + key
	delete(s.seen, k)
	s.released = append(s.released, k)
	return nil
}

// failOncePaymentRepo fails the first Create and delegates afterwards.
type failOncePaymentRepo struct {
	*memory.PaymentRepository
	err    error
	failed bool
}

func (r *failOncePaymentRepo) Create(ctx context.Context, p *domain.Payment) (*domain.InsertResult, error) {
	if !r.failed {
		r.failed = true
		return nil, r.err
	}
	return r.PaymentRepository.Create(ctx, p)
}
