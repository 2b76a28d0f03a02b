package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/api/metrics"
	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

// AgreementOptions tunes the workflow.
type AgreementOptions struct {
	// StrictTransitions rejects approve/reject on an agreement that is no
	// longer pending. When false the update is applied again.
	StrictTransitions bool
}

type AgreementService struct {
	agreements ports.AgreementRepository
	users      ports.UserRepository
	tx         ports.Transactor
	audit      ports.RoleChangeRecorder
	opts       AgreementOptions
	logger     zerolog.Logger
}

func NewAgreementService(
	agreements ports.AgreementRepository,
	users ports.UserRepository,
	tx ports.Transactor,
	audit ports.RoleChangeRecorder,
	opts AgreementOptions,
	logger zerolog.Logger,
) *AgreementService {
	return &AgreementService{
		agreements: agreements,
		users:      users,
		tx:         tx,
		audit:      audit,
		opts:       opts,
		logger:     logger,
	}
}

// Create files a new agreement. The status is always pending regardless of input.
func (s *AgreementService) Create(ctx context.Context, agreement domain.Agreement) (*domain.InsertResult, error) {
	agreement.ID = ""
	agreement.Email = strings.TrimSpace(agreement.Email)
	agreement.Status = domain.AgreementPending
	if agreement.RequestedAt.IsZero() {
		agreement.RequestedAt = time.Now().UTC()
	}

	res, err := s.agreements.Create(ctx, &agreement)
	if err != nil {
		return nil, fmt.Errorf("create agreement: %w", err)
	}
	s.logger.Info().Str("email", agreement.Email).Str("id", res.InsertedID).Msg("agreement requested")
	return res, nil
}

func (s *AgreementService) List(ctx context.Context) ([]domain.Agreement, error) {
	out, err := s.agreements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agreements: %w", err)
	}
	return out, nil
}

func (s *AgreementService) FindByEmail(ctx context.Context, email string) (*domain.Agreement, error) {
	a, err := s.agreements.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find agreement: %w", err)
	}
	return a, nil
}

// Approve checks the agreement and promotes the applicant to member as one
// unit of work. On a non-atomic transactor a failed promotion is compensated
// by restoring the agreement's previous status; if that also fails the
// returned error wraps domain.ErrPartialApproval.
func (s *AgreementService) Approve(ctx context.Context, actor, agreementID, applicantEmail string) (*ports.ApprovalResult, error) {
	current, err := s.checkable(ctx, agreementID)
	if err != nil {
		metrics.AgreementTransitionsTotal.WithLabelValues("approve", "rejected").Inc()
		return nil, err
	}

	var (
		result           ports.ApprovalResult
		agreementWritten bool
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		agreementWritten = false

		ar, err := s.agreements.SetStatus(txCtx, agreementID, domain.AgreementChecked)
		if err != nil {
			return fmt.Errorf("check agreement: %w", err)
		}
		agreementWritten = true

		ur, err := s.users.SetRoleByEmail(txCtx, applicantEmail, domain.RoleMember)
		if err != nil {
			return fmt.Errorf("promote applicant: %w", err)
		}

		result = ports.ApprovalResult{Agreement: *ar, User: *ur}
		return nil
	})
	if err != nil {
		metrics.AgreementTransitionsTotal.WithLabelValues("approve", "failed").Inc()
		return nil, s.compensateApproval(ctx, current, agreementWritten, err)
	}

	metrics.AgreementTransitionsTotal.WithLabelValues("approve", "applied").Inc()
	s.logger.Info().
		Str("agreement_id", agreementID).
		Str("email", applicantEmail).
		Str("actor", actor).
		Int64("agreement_matched", result.Agreement.MatchedCount).
		Int64("user_matched", result.User.MatchedCount).
		Msg("agreement approved")

	if result.User.MatchedCount > 0 {
		s.recordRoleChange(domain.RoleChange{
			Email:       applicantEmail,
			Role:        domain.RoleMember,
			Reason:      domain.RoleChangeAgreementApproved,
			AgreementID: agreementID,
			Actor:       actor,
		})
	}
	return &result, nil
}

func (s *AgreementService) compensateApproval(ctx context.Context, previous *domain.Agreement, agreementWritten bool, cause error) error {
	if s.tx.Atomic() || !agreementWritten {
		return cause
	}

	if _, err := s.agreements.SetStatus(ctx, previous.ID, previous.Status); err != nil {
		s.logger.Error().
			Err(err).
			AnErr("cause", cause).
			Str("agreement_id", previous.ID).
			Msg("approval compensation failed")
		return fmt.Errorf("%w: %w (restore agreement: %v)", domain.ErrPartialApproval, cause, err)
	}

	s.logger.Warn().
		Err(cause).
		Str("agreement_id", previous.ID).
		Str("status", string(previous.Status)).
		Msg("approval rolled back")
	return cause
}

// Reject checks the agreement without touching the applicant's role.
func (s *AgreementService) Reject(ctx context.Context, actor, agreementID string) (*domain.UpdateResult, error) {
	if _, err := s.checkable(ctx, agreementID); err != nil {
		metrics.AgreementTransitionsTotal.WithLabelValues("reject", "rejected").Inc()
		return nil, err
	}

	res, err := s.agreements.SetStatus(ctx, agreementID, domain.AgreementChecked)
	if err != nil {
		metrics.AgreementTransitionsTotal.WithLabelValues("reject", "failed").Inc()
		return nil, fmt.Errorf("reject agreement: %w", err)
	}

	metrics.AgreementTransitionsTotal.WithLabelValues("reject", "applied").Inc()
	s.logger.Info().Str("agreement_id", agreementID).Str("actor", actor).Msg("agreement rejected")
	return res, nil
}

// RemoveMember demotes an identity back to the user role.
func (s *AgreementService) RemoveMember(ctx context.Context, actor, userID string) (*domain.UpdateResult, error) {
	res, err := s.users.SetRoleByID(ctx, userID, domain.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("actor", actor).Int64("matched", res.MatchedCount).Msg("member removed")
	if res.MatchedCount > 0 {
		change := domain.RoleChange{
			UserID: userID,
			Role:   domain.RoleUser,
			Reason: domain.RoleChangeMemberRemoved,
			Actor:  actor,
		}
		if u, err := s.users.FindByID(ctx, userID); err == nil {
			change.Email = u.Email
		}
		s.recordRoleChange(change)
	}
	return res, nil
}

// checkable loads the agreement and, in strict mode, verifies it is still pending.
func (s *AgreementService) checkable(ctx context.Context, agreementID string) (*domain.Agreement, error) {
	a, err := s.agreements.FindByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, domain.ErrAgreementNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil, err
		}
		return nil, fmt.Errorf("load agreement: %w", err)
	}

	if s.opts.StrictTransitions && !a.Status.CanTransitionTo(domain.AgreementChecked) {
		return nil, fmt.Errorf("%w (status %s)", domain.ErrAgreementAlreadyChecked, a.Status)
	}
	if a.Status == domain.AgreementChecked {
		s.logger.Warn().Str("agreement_id", agreementID).Msg("agreement already checked, applying again")
	}
	return a, nil
}

func (s *AgreementService) recordRoleChange(change domain.RoleChange) {
	metrics.RoleChangesTotal.WithLabelValues(string(change.Role), change.Reason).Inc()
	if s.audit == nil {
		return
	}
	change.At = time.Now().UTC()
	s.audit.Record(change)
}
