// Contractor billing HTTP handlers.
//
// This file exposes the contractor-facing billing endpoints:
//   - GET  /contractors/{id}/billing        (budget position summary)
//   - PUT  /contractors/{id}/budget         (update daily budget)
//   - POST /contractors/{id}/payment-setup  (hosted card-capture session)
//   - GET  /contractors/{id}/charges        (paginated charge history)
//   - POST /billing/retry-sweep             (re-drive recent failed charges)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garageleadly/go-leads-backend/internal/domain"
	"github.com/garageleadly/go-leads-backend/internal/repo"
	"github.com/garageleadly/go-leads-backend/internal/services"
	"github.com/garageleadly/go-leads-backend/internal/utils"
)

//
// DTOs
//

// UpdateBudgetRequest is the JSON payload for updating a daily budget.
type UpdateBudgetRequest struct {
	DailyBudget float64 `json:"daily_budget" binding:"required,gte=0" example:"150"`
}

// SetupSessionResponse carries the hosted card-capture session URL.
type SetupSessionResponse struct {
	URL string `json:"url"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListChargesResponse wraps a page of charges and pagination information.
type ListChargesResponse struct {
	Charges    []domain.LeadCharge `json:"charges"`
	Pagination Pagination          `json:"pagination"`
}

//
// Helpers
//

// contractorID validates the :id path parameter as a UUID.
func contractorID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "contractor id must be a UUID")
		return "", false
	}
	return id, true
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// GetBilling godoc
// @ID          getContractorBilling
// @Summary     Contractor billing summary
// @Description Returns the contractor's daily budget, spend, remaining budget, and today's lead volume.
// @Tags        Billing
// @Produce     json
//
// @Param       id path string true "Contractor ID (UUID)" format(uuid)
//
// @Success     200  {object} services.BillingSummary
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Contractor not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contractors/{id}/billing [get]
func (h *Handlers) GetBilling(c *gin.Context) {
	id, valid := contractorID(c)
	if !valid {
		return
	}

	sum, err := h.billingSvc.Summary(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrContractorNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "contractor not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sum)
}

// UpdateBudget godoc
// @ID          updateContractorBudget
// @Summary     Update daily budget
// @Description Sets the contractor's daily spend cap for lead charges.
// @Tags        Billing
// @Accept      json
// @Produce     json
//
// @Param       id   path string true "Contractor ID (UUID)" format(uuid)
// @Param       body body handlers.UpdateBudgetRequest true "New daily budget"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Contractor not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contractors/{id}/budget [put]
func (h *Handlers) UpdateBudget(c *gin.Context) {
	id, valid := contractorID(c)
	if !valid {
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "daily_budget required (>= 0)")
		return
	}

	err := h.billingSvc.UpdateDailyBudget(c.Request.Context(), id, req.DailyBudget)
	switch {
	case errors.Is(err, services.ErrInvalidBudget):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrContractorNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "contractor not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		noContent(c)
	}
}

// PaymentSetup godoc
// @ID          createPaymentSetup
// @Summary     Start payment-method setup
// @Description Creates the payment customer when needed and opens a hosted card-capture session.
// @Tags        Billing
// @Produce     json
//
// @Param       id path string true "Contractor ID (UUID)" format(uuid)
//
// @Success     201  {object} handlers.SetupSessionResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Contractor not found"
// @Failure     502  {object} handlers.ErrorResponse "Payment transport failure"
// @Router      /contractors/{id}/payment-setup [post]
func (h *Handlers) PaymentSetup(c *gin.Context) {
	id, valid := contractorID(c)
	if !valid {
		return
	}

	url, err := h.billingSvc.NewSetupSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrContractorNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "contractor not found")
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeSetupFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, SetupSessionResponse{URL: url})
}

// ListCharges godoc
// @ID          listContractorCharges
// @Summary     Charge history (paginated)
// @Description Returns a page of the contractor's lead charge records, newest first.
// @Tags        Billing
// @Produce     json
//
// @Param       id        path  string true  "Contractor ID (UUID)" format(uuid)
// @Param       page      query int    false "Page number"    minimum(1) default(1)
// @Param       page_size query int    false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListChargesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contractors/{id}/charges [get]
func (h *Handlers) ListCharges(c *gin.Context) {
	id, valid := contractorID(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	total, err := repo.CountCharges(ctx, h.db, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	items := []domain.LeadCharge{}
	if total > 0 {
		items, err = repo.ListChargesPage(ctx, h.db, id, (page-1)*pageSize, pageSize)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListChargesResponse{
		Charges: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// RetrySweep godoc
// @ID          runRetrySweep
// @Summary     Retry failed charges
// @Description Re-drives failed charges from the retry window and reports aggregate counts.
// @Tags        Billing
// @Produce     json
//
// @Success     200  {object} services.SweepResult
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /billing/retry-sweep [post]
func (h *Handlers) RetrySweep(c *gin.Context) {
	res, err := h.billingSvc.RetryFailedCharges(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSweepFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}
