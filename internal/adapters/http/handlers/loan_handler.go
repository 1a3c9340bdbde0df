package handlers

import (
	"errors"

	"helacredit/internal/adapters/http/middleware"
	"helacredit/internal/adapters/persistence/repositories"
	"helacredit/internal/core/domain"
	"helacredit/internal/core/services"
	"helacredit/internal/pkg/pagination"
	"helacredit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan application endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// loanError maps workflow errors to HTTP responses
func loanError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound):
		return response.NotFound(c, "Application not found")
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return response.Conflict(c, "Operation not allowed in the application's current status")
	case errors.Is(err, domain.ErrApplicationNotEditable):
		return response.Conflict(c, "Application can only be edited in draft")
	case errors.Is(err, domain.ErrPrerequisiteNotMet):
		return response.UnprocessableEntity(c, "A completed payment is required first")
	case errors.Is(err, domain.ErrAlreadyDisbursed):
		return response.Conflict(c, "Application has already been disbursed")
	case errors.Is(err, domain.ErrFeeAlreadyPaid):
		return response.Conflict(c, "Fee has already been settled")
	case errors.Is(err, domain.ErrPaymentNotFound):
		return response.NotFound(c, "Payment not found")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Record not found")
	case errors.Is(err, domain.ErrAmountBelowMinimum):
		return response.BadRequest(c, "Requested amount must be at least 1000")
	case errors.Is(err, domain.ErrInvalidRepaymentPeriod):
		return response.BadRequest(c, "Repayment period must be between 1 and 60 months")
	case errors.Is(err, domain.ErrCountyNotFound):
		return response.BadRequest(c, "Unknown county")
	case errors.Is(err, domain.ErrApprovedAmountRequired):
		return response.BadRequest(c, "Approved amount is required")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Invalid application data")
	default:
		return response.InternalServerError(c, "Operation failed")
	}
}

// Create handles application creation
// @Summary Create loan application
// @Description Open a new loan application in draft
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ApplicationInput true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var input services.ApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.loanService.Create(c.Context(), middleware.UserID(c), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Created(c, "Application created", app)
}

// Update handles draft edits
// @Summary Update loan application
// @Description Edit an application while it is still in draft
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.ApplicationInput true "Application data"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id} [put]
func (h *LoanHandler) Update(c *fiber.Ctx) error {
	var input services.ApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.loanService.Update(c.Context(), middleware.UserID(c), c.Params("id"), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Application updated", app)
}

// Get handles single application retrieval
// @Summary Get loan application
// @Description Get an application with its ledger and repayment schedule
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	app, err := h.loanService.Get(c.Context(), middleware.UserID(c), middleware.IsAdmin(c), c.Params("id"))
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Application retrieved", app)
}

// ListMine lists the caller's applications
// @Summary List own applications
// @Description List the authenticated user's loan applications
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListMine(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	apps, total, err := h.loanService.ListMine(c.Context(), middleware.UserID(c), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved", pagination.NewResponse(apps, params, total))
}

// List lists all applications (admin)
// @Summary List all applications
// @Description List loan applications across all users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Param search query string false "Search by application ID, national ID or name"
// @Success 200 {object} response.Response
// @Router /admin/loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.LoanFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	apps, total, err := h.loanService.List(c.Context(), filter, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved", pagination.NewResponse(apps, params, total))
}

// ReviewQueue lists applications waiting on staff action
// @Summary Review queue
// @Description List applications in submitted or under_review status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /admin/loans/review-queue [get]
func (h *LoanHandler) ReviewQueue(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	status := c.Query("status", string(domain.StatusUnderReview))
	if status != string(domain.StatusSubmitted) && status != string(domain.StatusUnderReview) {
		return response.BadRequest(c, "Status must be submitted or under_review")
	}

	apps, total, err := h.loanService.List(c.Context(), repositories.LoanFilter{Status: status}, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Review queue retrieved", pagination.NewResponse(apps, params, total))
}

// Submit moves a draft into the workflow
// @Summary Submit application
// @Description Move a draft application into the review workflow
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/submit [post]
func (h *LoanHandler) Submit(c *fiber.Ctx) error {
	app, err := h.loanService.Submit(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Application submitted", app)
}

// Calculate runs the repayment calculator
// @Summary Repayment calculator
// @Description Compute the monthly payment and totals for given terms
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CalculateInput true "Calculator terms"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /loans/calculate [post]
func (h *LoanHandler) Calculate(c *fiber.Ctx) error {
	var input services.CalculateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.loanService.Calculate(&input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Repayment schedule computed", result)
}

// PayServiceFee charges the review gate fee
// @Summary Pay service fee
// @Description Pay the 5% service fee and move the application into review
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.PayFeeInput true "Payment channel"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/service-fee [post]
func (h *LoanHandler) PayServiceFee(c *fiber.Ctx) error {
	var input services.PayFeeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.loanService.PayServiceFee(c.Context(), middleware.UserID(c), c.Params("id"), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Service fee paid", app)
}

// PayProcessingFee records the post-approval fee
// @Summary Pay processing fee
// @Description Pay the flat processing fee on an approved application
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.PayFeeInput true "Payment channel"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/processing-fee [post]
func (h *LoanHandler) PayProcessingFee(c *fiber.Ctx) error {
	var input services.PayFeeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.loanService.PayProcessingFee(c.Context(), middleware.UserID(c), c.Params("id"), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Processing fee recorded", app)
}

// Payments lists the fee ledger for an application
// @Summary List application payments
// @Description List the fee ledger entries for an application
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Router /loans/{id}/payments [get]
func (h *LoanHandler) Payments(c *fiber.Ctx) error {
	payments, err := h.loanService.Payments(c.Context(), middleware.UserID(c), middleware.IsAdmin(c), c.Params("id"))
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Payments retrieved", payments)
}

// Disbursement returns the payout record for an application
// @Summary Get disbursement
// @Description Get the payout record for a disbursed application
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/disbursement [get]
func (h *LoanHandler) Disbursement(c *fiber.Ctx) error {
	disbursement, err := h.loanService.Disbursement(c.Context(), middleware.UserID(c), middleware.IsAdmin(c), c.Params("id"))
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Disbursement retrieved", disbursement)
}

// ConfirmPayment settles a pending bank transfer
// @Summary Confirm payment
// @Description Reconcile a pending bank transfer payment by reference
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reference path string true "Payment reference"
// @Param body body services.ConfirmPaymentInput true "Settlement details"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/payments/{reference}/confirm [post]
func (h *LoanHandler) ConfirmPayment(c *fiber.Ctx) error {
	var input services.ConfirmPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, err := h.loanService.ConfirmPayment(c.Context(), c.Params("reference"), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Payment confirmed", payment)
}

// Approve accepts an application under review
// @Summary Approve application
// @Description Approve an application under review and set the approved amount
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.ApproveInput true "Approval decision"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/loans/{id}/approve [post]
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	var input services.ApproveInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.loanService.Approve(c.Context(), c.Params("id"), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Application approved", app)
}

// Reject declines an application
// @Summary Reject application
// @Description Reject an application from submitted or under_review
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.RejectInput true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/loans/{id}/reject [post]
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	var input services.RejectInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Reason == "" {
		return response.BadRequest(c, "Rejection reason is required")
	}

	app, err := h.loanService.Reject(c.Context(), c.Params("id"), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Application rejected", app)
}

// Disburse pays out an approved application
// @Summary Disburse loan
// @Description Release funds for an approved application with a settled payment
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.DisburseInput false "Payout channel"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/loans/{id}/disburse [post]
func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	var input services.DisburseInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	app, err := h.loanService.Disburse(c.Context(), middleware.UserID(c), c.Params("id"), &input)
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Loan disbursed", app)
}

// Complete closes a repaid loan
// @Summary Complete loan
// @Description Mark a disbursed loan as fully repaid
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/loans/{id}/complete [post]
func (h *LoanHandler) Complete(c *fiber.Ctx) error {
	app, err := h.loanService.MarkCompleted(c.Context(), c.Params("id"))
	if err != nil {
		return loanError(c, err)
	}

	return response.Success(c, "Loan completed", app)
}
