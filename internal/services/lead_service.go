// Package services – LeadService
//
// This file implements the intake orchestrator: the fixed sequence that takes
// one submitted lead from persistence through matching, capacity allocation,
// pricing, billing, and contractor notification.
//
// Error posture follows the intake contract: failure to persist the lead is
// fatal; an empty match set is an expected structured rejection; everything
// downstream of assignment (counter write, charge, SMS) is degraded-but-
// continue: once a contractor is matched, the submitter sees success.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/domain"
	"github.com/garageleadly/go-leads-backend/internal/observability"
	"github.com/garageleadly/go-leads-backend/internal/repo"
)

// LeadPricer computes the platform price for one lead. It never fails.
type LeadPricer interface {
	QuoteLead(ctx context.Context, externalCost *float64) Quote
}

// LeadBiller charges a contractor for one lead. Outcomes, including
// failures, are values, never errors that could abort intake.
type LeadBiller interface {
	ChargeLead(ctx context.Context, contractorID, leadID string, amount float64) ChargeResult
}

// Notifier delivers the new-lead text message to the assigned contractor.
type Notifier interface {
	NotifyLead(ctx context.Context, c *domain.Contractor, l *domain.Lead) error
}

// Submission is the validated payload of the public intake form.
type Submission struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	County  string
	ZIP     string
	Issue   string
	JobType string
}

// SubmitResult is the success payload returned to the submitter.
type SubmitResult struct {
	LeadID       string `json:"lead_id"`
	ContractorID string `json:"contractor_id"`
	Message      string `json:"message"`
}

// LeadService orchestrates the intake pipeline. It drives every other
// component exactly once per request, in a fixed order.
type LeadService struct {
	// DB is the GORM handle used for leads, contractors, and counters.
	DB *gorm.DB
	// Pricing computes the per-lead platform price.
	Pricing LeadPricer
	// Billing charges the assigned contractor.
	Billing LeadBiller
	// Notifier sends the contractor SMS. May be nil in tests.
	Notifier Notifier
}

// NewLeadService constructs a LeadService bound to its collaborators.
func NewLeadService(db *gorm.DB, pricing LeadPricer, billing LeadBiller, notifier Notifier) *LeadService {
	return &LeadService{DB: db, Pricing: pricing, Billing: billing, Notifier: notifier}
}

// countyCaser canonicalizes county capitalization ("harris" → "Harris") so
// intake matches contractors regardless of how the form was filled in.
var countyCaser = cases.Title(language.AmericanEnglish)

// NormalizeCounty trims and title-cases a county name.
func NormalizeCounty(s string) string {
	return countyCaser.String(strings.TrimSpace(s))
}

// Validate checks required fields and the job type, normalizing the county in
// place. It returns ErrInvalidSubmission on any violation.
func (sub *Submission) Validate() error {
	sub.County = NormalizeCounty(sub.County)
	sub.JobType = strings.ToLower(strings.TrimSpace(sub.JobType))

	if strings.TrimSpace(sub.Name) == "" ||
		strings.TrimSpace(sub.Phone) == "" ||
		sub.County == "" {
		return ErrInvalidSubmission
	}
	switch sub.JobType {
	case domain.JobTypeResidential, domain.JobTypeCommercial:
		return nil
	default:
		return ErrInvalidSubmission
	}
}

// Submit runs the full intake pipeline for one lead.
//
// Sequence: persist pending lead → match active roster → allocate under daily
// caps → assign + bump counter → price → charge → SMS → success payload.
//
// Returned errors:
//   - ErrInvalidSubmission: the payload failed validation (nothing persisted).
//   - ErrNoCoverage: no contractor matches (lead stays pending).
//   - Any other error is an infrastructure failure before or during matching.
//
// After allocation the flow no longer fails: assignment-record and counter
// persistence problems, billing outcomes, and SMS transport errors are logged
// and the submitter still receives success.
func (s *LeadService) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	lead, err := repo.CreateLead(ctx, s.DB, &domain.Lead{
		Name:    sub.Name,
		Phone:   sub.Phone,
		Email:   sub.Email,
		Address: sub.Address,
		City:    sub.City,
		County:  sub.County,
		ZIP:     sub.ZIP,
		Issue:   sub.Issue,
		JobType: sub.JobType,
	})
	if err != nil {
		return nil, err
	}

	roster, err := repo.ListActiveContractors(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	candidates := MatchContractors(roster, lead.County, lead.JobType)
	if len(candidates) == 0 {
		observability.LeadsRejected.Inc()
		log.Warn().
			Str("lead_id", lead.ID).
			Str("county", lead.County).
			Str("job_type", lead.JobType).
			Msg("no matching contractors")
		return nil, ErrNoCoverage
	}

	today := time.Now().UTC().Format("2006-01-02")
	alloc, err := SelectContractor(ctx, candidates, today, func(ctx context.Context, contractorID, date string) (int, error) {
		n, err := repo.GetDailyLeadCount(ctx, s.DB, contractorID, date)
		if err != nil {
			// Counter read failures degrade to zero so allocation stays
			// deterministic; the overflow policy already tolerates imprecise
			// counts.
			log.Error().Err(err).Str("contractor_id", contractorID).Msg("read daily lead count")
			return 0, nil
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	contractor := alloc.Contractor
	if alloc.Overflow {
		log.Warn().
			Str("lead_id", lead.ID).
			Str("contractor_id", contractor.ID).
			Msg("all contractors at cap, overflow assignment")
	}

	now := time.Now().UTC()
	if err := repo.AssignLead(ctx, s.DB, lead.ID, contractor.ID, now); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID).Msg("persist lead assignment")
	} else {
		lead.ContractorID = &contractor.ID
		lead.Status = domain.LeadStatusAssigned
		lead.AssignedAt = &now
	}
	if err := repo.IncrementDailyLeadCount(ctx, s.DB, contractor.ID, today); err != nil {
		log.Error().Err(err).Str("contractor_id", contractor.ID).Msg("increment daily lead count")
	}
	observability.LeadsAssigned.WithLabelValues(boolLabel(alloc.Overflow)).Inc()

	quote := s.Pricing.QuoteLead(ctx, nil)
	if err := repo.CreateLeadCost(ctx, s.DB, lead.ID, contractor.ID, quote.CostPerLead, quote.Margin, quote.PlatformPrice); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID).Msg("record lead cost")
	}

	charge := s.Billing.ChargeLead(ctx, contractor.ID, lead.ID, quote.PlatformPrice)
	if !charge.Succeeded {
		log.Warn().
			Str("lead_id", lead.ID).
			Str("contractor_id", contractor.ID).
			Str("reason", charge.Reason).
			Str("message", charge.Message).
			Msg("lead charge not captured")
	}

	if s.Notifier != nil {
		if err := s.Notifier.NotifyLead(ctx, &contractor, lead); err != nil {
			observability.SMSSends.WithLabelValues("error").Inc()
			log.Error().Err(err).Str("contractor_id", contractor.ID).Msg("send lead sms")
		} else {
			observability.SMSSends.WithLabelValues("sent").Inc()
		}
	}

	return &SubmitResult{
		LeadID:       lead.ID,
		ContractorID: contractor.ID,
		Message:      "Lead successfully assigned to contractor",
	}, nil
}

// boolLabel renders a bool as a metric label value.
func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
