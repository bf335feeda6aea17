// Package services defines the business logic for lead intake, matching,
// capacity allocation, pricing, billing, and contractor notification.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Intake-related errors.
var (
	// ErrNoCoverage indicates that no active contractor services the lead's
	// county for the requested job type. This is an expected business outcome,
	// not an infrastructure failure.
	ErrNoCoverage = errors.New("no contractors service this area yet")

	// ErrInvalidSubmission is returned when a lead submission is missing
	// required fields or carries an unknown job type.
	ErrInvalidSubmission = errors.New("invalid lead submission")

	// ErrLeadNotFound indicates that the requested lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")
)

// Billing-related errors.
var (
	// ErrContractorNotFound indicates that the referenced contractor does not
	// exist or has been removed.
	ErrContractorNotFound = errors.New("contractor not found")

	// ErrNoPaymentCustomer is returned when a contractor has no payment
	// customer reference and therefore cannot be charged.
	ErrNoPaymentCustomer = errors.New("no payment customer for contractor")

	// ErrNoPaymentMethod is returned when the payment transport holds no
	// usable payment method for the contractor's customer.
	ErrNoPaymentMethod = errors.New("no payment method found for customer")

	// ErrInvalidBudget is returned when a daily budget update carries a
	// negative value.
	ErrInvalidBudget = errors.New("daily budget must be >= 0")
)
