package domain

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrInvalidID    = errors.New("invalid id")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	ErrAgreementNotFound       = errors.New("agreement not found")
	ErrAgreementAlreadyChecked = errors.New("agreement already checked")
	// ErrPartialApproval means the agreement was checked but the applicant's
	// role could not be promoted, and the agreement could not be restored.
	ErrPartialApproval = errors.New("agreement approval partially applied")

	ErrApartmentNotFound = errors.New("apartment not found")

	ErrDuplicatePayment = errors.New("payment already recorded")
	ErrInvalidAmount    = errors.New("invalid payment amount")
	ErrPaymentsDisabled = errors.New("payment processing is not configured")
	ErrPaymentProcessor = errors.New("payment processor error")
)
