// Package services – BillingService
//
// This file implements the billing processor: charging a contractor's stored
// payment method for an assigned lead under a daily spend budget, recording
// every attempt in the lead_charges ledger, and the out-of-band retry sweep
// that re-drives recent failures. Billing failures are business outcomes
// here, not errors; lead delivery must never block on a charge.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/domain"
	"github.com/garageleadly/go-leads-backend/internal/observability"
	"github.com/garageleadly/go-leads-backend/internal/repo"
)

// Machine-readable failure reasons surfaced in ChargeResult.Reason and
// recorded on failed lead_charges rows.
const (
	ReasonBudgetExceeded     = "daily_budget_exceeded"
	ReasonContractorNotFound = "contractor_not_found"
	ReasonNoCustomer         = "no_payment_customer"
	ReasonNoPaymentMethod    = "no_payment_method"
	ReasonChargeFailed       = "charge_failed"
)

// PaymentProvider is the payment transport consumed by BillingService.
// Implementations must be safe for concurrent use and honor the context.
type PaymentProvider interface {
	// CreateCustomer registers the contractor with the payment transport and
	// returns the transport customer reference.
	CreateCustomer(ctx context.Context, c *domain.Contractor) (string, error)

	// CreateSetupSession opens a hosted payment-method capture session for an
	// existing customer and returns its URL.
	CreateSetupSession(ctx context.Context, customerID, contractorID string) (string, error)

	// DefaultPaymentMethod resolves the customer's default card reference.
	// It returns ErrNoPaymentMethod when the customer has no usable method.
	DefaultPaymentMethod(ctx context.Context, customerID string) (string, error)

	// Charge performs an immediate, confirmed, off-session capture of
	// amountCents and returns the transport charge reference.
	Charge(ctx context.Context, customerID, paymentMethodID string, amountCents int64, leadID, contractorID string) (string, error)
}

// ChargeResult is the outcome variant of one billing attempt.
type ChargeResult struct {
	Succeeded bool    `json:"succeeded"`
	ChargeID  string  `json:"charge_id,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// SweepResult aggregates one retry-sweep run.
type SweepResult struct {
	Retried   int `json:"retried"`
	Succeeded int `json:"succeeded"`
}

// BillingSummary reports a contractor's budget position, per the contractor
// dashboard.
type BillingSummary struct {
	DailyBudget        float64 `json:"daily_budget"`
	SpentToday         float64 `json:"spent_today"`
	RemainingBudget    float64 `json:"remaining_budget"`
	LeadsReceivedToday int64   `json:"leads_received_today"`
	HasPaymentMethod   bool    `json:"has_payment_method"`
}

// BillingService charges contractors for leads and keeps the charge ledger.
type BillingService struct {
	// DB is the GORM handle used for contractors and the charge ledger.
	DB *gorm.DB
	// Payments is the payment transport used for customers and captures.
	Payments PaymentProvider

	// MaxRetries bounds how often the sweep re-drives one failed charge.
	MaxRetries int
	// RetryWindow bounds how far back the sweep looks for failed charges.
	RetryWindow time.Duration
}

// NewBillingService constructs a BillingService with the retry policy used in
// production: up to 3 attempts within 24 hours.
func NewBillingService(db *gorm.DB, p PaymentProvider) *BillingService {
	return &BillingService{
		DB:          db,
		Payments:    p,
		MaxRetries:  3,
		RetryWindow: 24 * time.Hour,
	}
}

// ChargeLead attempts to bill contractorID for leadID at amount currency
// units.
//
// Policy:
//   - Missing contractor, missing customer reference, or missing payment
//     method fail this attempt and are recorded in the ledger.
//   - A contractor whose spent_today already meets or exceeds daily_budget is
//     rejected with daily_budget_exceeded before any capture is attempted;
//     the rejection is recorded so the sweep can retry after a budget reset.
//   - The capture is immediate and off-session for round(amount*100) cents.
//   - Success writes a succeeded ledger row and accumulates spent_today.
//   - Any other failure writes a failed ledger row with the reason;
//     retry_count stays at zero (only the sweep touches it).
//
// ChargeLead never returns an error: every outcome is a ChargeResult, and
// ledger/spend persistence problems are logged and swallowed so billing can
// never abort lead delivery.
func (s *BillingService) ChargeLead(ctx context.Context, contractorID, leadID string, amount float64) ChargeResult {
	amountCents := int64(math.Round(amount * 100))

	c, err := repo.GetContractor(ctx, s.DB, contractorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return s.fail(ctx, contractorID, leadID, amountCents, ReasonContractorNotFound, "contractor not found")
		}
		return s.fail(ctx, contractorID, leadID, amountCents, ReasonChargeFailed, err.Error())
	}

	// Strict check: at or above budget means no capture is attempted. The
	// rejection is still recorded in the ledger so the sweep can retry once
	// the budget resets.
	if c.SpentToday >= c.DailyBudget {
		return s.fail(ctx, contractorID, leadID, amountCents, ReasonBudgetExceeded,
			fmt.Sprintf("daily budget of $%.2f exceeded", c.DailyBudget))
	}

	if c.StripeCustomerID == "" {
		return s.fail(ctx, contractorID, leadID, amountCents, ReasonNoCustomer, ErrNoPaymentCustomer.Error())
	}

	pm, err := s.Payments.DefaultPaymentMethod(ctx, c.StripeCustomerID)
	if err != nil {
		if errors.Is(err, ErrNoPaymentMethod) {
			return s.fail(ctx, contractorID, leadID, amountCents, ReasonNoPaymentMethod, ErrNoPaymentMethod.Error())
		}
		return s.fail(ctx, contractorID, leadID, amountCents, ReasonChargeFailed, err.Error())
	}

	chargeID, err := s.Payments.Charge(ctx, c.StripeCustomerID, pm, amountCents, leadID, contractorID)
	if err != nil {
		return s.fail(ctx, contractorID, leadID, amountCents, ReasonChargeFailed, err.Error())
	}

	if _, err := repo.CreateLeadCharge(ctx, s.DB, &domain.LeadCharge{
		ContractorID:   contractorID,
		LeadID:         leadID,
		StripeChargeID: chargeID,
		AmountCents:    amountCents,
		Status:         domain.ChargeStatusSucceeded,
	}); err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("record succeeded charge")
	}
	if err := repo.AddSpentToday(ctx, s.DB, contractorID, amount); err != nil {
		log.Error().Err(err).Str("contractor_id", contractorID).Msg("accumulate spent_today")
	}

	observability.Charges.WithLabelValues(domain.ChargeStatusSucceeded).Inc()
	return ChargeResult{Succeeded: true, ChargeID: chargeID, Amount: amount}
}

// fail records a failed charge attempt and returns the failure result.
func (s *BillingService) fail(ctx context.Context, contractorID, leadID string, amountCents int64, reason, msg string) ChargeResult {
	if _, err := repo.CreateLeadCharge(ctx, s.DB, &domain.LeadCharge{
		ContractorID:  contractorID,
		LeadID:        leadID,
		AmountCents:   amountCents,
		Status:        domain.ChargeStatusFailed,
		FailureReason: msg,
	}); err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Msg("record failed charge")
	}
	observability.Charges.WithLabelValues(reason).Inc()
	return ChargeResult{Reason: reason, Message: msg}
}

// RetryFailedCharges re-drives recent failed charges: status failed,
// retry_count below MaxRetries, not yet recovered, created within
// RetryWindow. Each eligible row triggers a brand-new charge attempt for the
// same (contractor, lead) pair. A successful retry flags the original row's
// retry_success (the single source of truth for "eventually succeeded"); a
// failed retry increments the original's retry_count.
//
// Running the sweep again with no new failures returns {0, 0}: recovered rows
// are excluded by the retry_success flag and exhausted rows by retry_count.
func (s *BillingService) RetryFailedCharges(ctx context.Context) (SweepResult, error) {
	observability.RetrySweeps.Inc()

	cutoff := time.Now().UTC().Add(-s.RetryWindow)
	failed, err := repo.ListRetryableCharges(ctx, s.DB, s.MaxRetries, cutoff)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Retried: len(failed)}
	for _, ch := range failed {
		amount := float64(ch.AmountCents) / 100

		out := s.ChargeLead(ctx, ch.ContractorID, ch.LeadID, amount)
		if out.Succeeded {
			if err := repo.MarkRetrySuccess(ctx, s.DB, ch.ID); err != nil {
				log.Error().Err(err).Str("charge_id", ch.ID).Msg("mark retry success")
				continue
			}
			observability.RetrySweepRecovered.Inc()
			res.Succeeded++
			continue
		}
		if err := repo.IncrementRetryCount(ctx, s.DB, ch.ID); err != nil {
			log.Error().Err(err).Str("charge_id", ch.ID).Msg("increment retry count")
		}
	}
	return res, nil
}

// Summary returns the contractor's budget position and today's lead volume.
// Payment-method presence is resolved best-effort through the payment
// transport; transport errors degrade to false rather than failing the call.
func (s *BillingService) Summary(ctx context.Context, contractorID string) (*BillingSummary, error) {
	c, err := repo.GetContractor(ctx, s.DB, contractorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrContractorNotFound
		}
		return nil, err
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	leadsToday, err := repo.CountSucceededChargesSince(ctx, s.DB, contractorID, startOfDay)
	if err != nil {
		return nil, err
	}

	hasPM := false
	if c.StripeCustomerID != "" {
		if _, err := s.Payments.DefaultPaymentMethod(ctx, c.StripeCustomerID); err == nil {
			hasPM = true
		}
	}

	return &BillingSummary{
		DailyBudget:        c.DailyBudget,
		SpentToday:         c.SpentToday,
		RemainingBudget:    c.DailyBudget - c.SpentToday,
		LeadsReceivedToday: leadsToday,
		HasPaymentMethod:   hasPM,
	}, nil
}

// UpdateDailyBudget sets the contractor's daily spend cap.
func (s *BillingService) UpdateDailyBudget(ctx context.Context, contractorID string, budget float64) error {
	if budget < 0 {
		return ErrInvalidBudget
	}
	if err := repo.UpdateDailyBudget(ctx, s.DB, contractorID, budget); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrContractorNotFound
		}
		return err
	}
	return nil
}

// EnsureCustomer returns the contractor's payment customer reference,
// creating and persisting one through the payment transport when absent.
func (s *BillingService) EnsureCustomer(ctx context.Context, contractorID string) (string, error) {
	c, err := repo.GetContractor(ctx, s.DB, contractorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrContractorNotFound
		}
		return "", err
	}
	if c.StripeCustomerID != "" {
		return c.StripeCustomerID, nil
	}

	customerID, err := s.Payments.CreateCustomer(ctx, c)
	if err != nil {
		return "", err
	}
	if err := repo.SetStripeCustomerID(ctx, s.DB, contractorID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// NewSetupSession opens a hosted card-capture session for the contractor,
// creating the payment customer first when needed. It returns the session URL
// the dashboard redirects to.
func (s *BillingService) NewSetupSession(ctx context.Context, contractorID string) (string, error) {
	customerID, err := s.EnsureCustomer(ctx, contractorID)
	if err != nil {
		return "", err
	}
	return s.Payments.CreateSetupSession(ctx, customerID, contractorID)
}
