// Lead intake HTTP handler.
//
// This file exposes the public endpoint the marketing form posts to:
//   - POST /leads    (submit a job request; synchronous match + assign)
//
// The handler is transport-thin: it validates input, invokes the intake
// orchestrator, and translates the outcome into the response contract. The
// expected "no coverage" rejection is a structured business outcome (422),
// distinct from infrastructure failure (500). When the client supplies an
// Idempotency-Key, a completed submission is replayed instead of re-running
// the pipeline.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/garageleadly/go-leads-backend/internal/http/middleware"
	"github.com/garageleadly/go-leads-backend/internal/repo"
	"github.com/garageleadly/go-leads-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// LeadIntakeService defines the intake operation consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type LeadIntakeService interface {
	// Submit runs the full intake pipeline for one lead submission.
	Submit(ctx context.Context, sub services.Submission) (*services.SubmitResult, error)
}

// BillingService defines the billing operations consumed by HTTP handlers.
type BillingService interface {
	// Summary returns a contractor's budget position.
	Summary(ctx context.Context, contractorID string) (*services.BillingSummary, error)
	// UpdateDailyBudget sets a contractor's daily spend cap.
	UpdateDailyBudget(ctx context.Context, contractorID string, budget float64) error
	// NewSetupSession opens a hosted card-capture session.
	NewSetupSession(ctx context.Context, contractorID string) (string, error)
	// RetryFailedCharges runs one failed-charge retry sweep.
	RetryFailedCharges(ctx context.Context) (services.SweepResult, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for lead intake and contractor billing.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic; DB is used only for idempotency records and
// charge-history reads.
type Handlers struct {
	leadSvc    LeadIntakeService
	billingSvc BillingService

	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(leadSvc LeadIntakeService, billingSvc BillingService, db *gorm.DB, idemTTL time.Duration) *Handlers {
	return &Handlers{leadSvc: leadSvc, billingSvc: billingSvc, db: db, idemTTL: idemTTL}
}

//
// DTOs
//

// SubmitLeadRequest is the JSON payload of the public intake form.
type SubmitLeadRequest struct {
	Name    string `json:"name"    binding:"required" example:"Jane Homeowner"`
	Phone   string `json:"phone"   binding:"required" example:"+1 832 555 0142"`
	Email   string `json:"email"   example:"jane@example.com"`
	Address string `json:"address" example:"42 Oak Ln"`
	City    string `json:"city"    example:"Houston"`
	County  string `json:"county"  binding:"required" example:"Harris"`
	ZIP     string `json:"zip"     example:"77002"`
	Issue   string `json:"issue"   example:"Garage door stuck halfway"`
	JobType string `json:"jobType" binding:"required" example:"residential"`
}

// SubmitLeadResponse is the success payload of the intake endpoint.
type SubmitLeadResponse struct {
	Success      bool   `json:"success"`
	LeadID       string `json:"lead_id"`
	ContractorID string `json:"contractor_id"`
	Message      string `json:"message"`
}

// RejectionResponse is the structured business rejection of the intake
// endpoint (distinct from the generic error envelope).
type RejectionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SubmitLead godoc
// @ID          submitLead
// @Summary     Submit a lead
// @Description Accepts a job request, matches and assigns a contractor, and returns the assignment.
// @Tags        Leads
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key header string false "Dedupe key for safe retries"
// @Param       body body handlers.SubmitLeadRequest true "Lead submission"
//
// @Success     201  {object} handlers.SubmitLeadResponse
// @Failure     400  {object} handlers.ErrorResponse     "Bad request"
// @Failure     422  {object} handlers.RejectionResponse "No contractor covers this area"
// @Failure     500  {object} handlers.ErrorResponse     "Internal error"
// @Router      /leads [post]
func (h *Handlers) SubmitLead(c *gin.Context) {
	ctx := c.Request.Context()

	// Replay a completed submission when the client retries with the same key.
	key, hasKey := middleware.GetIdempotencyKey(c)
	if hasKey && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, key, time.Now().UTC()); err == nil && rec != nil {
			if lead, err := repo.GetLead(ctx, h.db, rec.LeadID); err == nil && lead.ContractorID != nil {
				ok(c, rec.Status, SubmitLeadResponse{
					Success:      true,
					LeadID:       lead.ID,
					ContractorID: *lead.ContractorID,
					Message:      "Lead successfully assigned to contractor",
				})
				return
			}
		}
	}

	var req SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.leadSvc.Submit(ctx, services.Submission{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		City:    req.City,
		County:  req.County,
		ZIP:     req.ZIP,
		Issue:   req.Issue,
		JobType: req.JobType,
	})
	switch {
	case errors.Is(err, services.ErrInvalidSubmission):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, phone, county and a valid jobType are required")
		return
	case errors.Is(err, services.ErrNoCoverage):
		c.JSON(http.StatusUnprocessableEntity, RejectionResponse{
			Success: false,
			Error:   "No contractors service this area yet",
		})
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
		return
	}

	if hasKey && h.db != nil {
		if _, err := repo.CreateIdempotency(ctx, h.db, key, res.LeadID, http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			lg := middleware.LoggerFrom(c)
			lg.Error().Err(err).Str("lead_id", res.LeadID).Msg("store idempotency record")
		}
	}

	ok(c, http.StatusCreated, SubmitLeadResponse{
		Success:      true,
		LeadID:       res.LeadID,
		ContractorID: res.ContractorID,
		Message:      res.Message,
	})
}
