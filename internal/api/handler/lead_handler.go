package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

// LeadHandler serves the public lead forms and the staff lead routes.
type LeadHandler struct {
	service ports.LeadService
}

func NewLeadHandler(service ports.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// CaptureCustomer stores a lead from the public contact form.
//
// @Summary      Submit customer details
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                  false  "Replay protection key"
// @Param        body             body      captureCustomerRequest  true   "Customer details"
// @Success      201              {object}  customerCreatedResponse
// @Success      200              {object}  customerCreatedResponse  "Replayed request"
// @Failure      400              {object}  errorResponse
// @Router       /contact [post]
func (h *LeadHandler) CaptureCustomer(c echo.Context) error {
	var req captureCustomerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	req.IdempotencyKey = strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))

	res, err := h.service.CaptureCustomer(c.Request().Context(), req)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, customerCreatedResponse{Message: "Details submitted successfully.", Customer: res.Customer})
}

// SubmitContact stores a general inquiry.
//
// @Summary      Submit contact inquiry
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        body  body      submitContactRequest  true  "Inquiry"
// @Success      201   {object}  contactCreatedResponse
// @Failure      400   {object}  errorResponse
// @Router       /contact/inquiries [post]
func (h *LeadHandler) SubmitContact(c echo.Context) error {
	var req submitContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contact, err := h.service.SubmitContact(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contactCreatedResponse{Message: "Inquiry submitted successfully.", Contact: contact})
}

// ListCustomers returns every lead, newest first.
//
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Customer
// @Router       /contact/all [get]
func (h *LeadHandler) ListCustomers(c echo.Context) error {
	list, err := h.service.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// ListByStatus returns leads in one follow-up state.
//
// @Summary      List leads by status
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        status  path      string  true  "Lead status"
// @Success      200     {array}   domain.Customer
// @Failure      400     {object}  errorResponse
// @Router       /contact/status/{status} [get]
func (h *LeadHandler) ListByStatus(c echo.Context) error {
	list, err := h.service.ListByStatus(c.Request().Context(), domain.LeadStatus(c.Param("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// UpdateStatus moves a lead to another follow-up state.
//
// @Summary      Update lead status
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Customer ID"
// @Param        body  body      updateLeadStatusRequest  true  "New status"
// @Success      200   {object}  domain.Customer
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /contact/update-status/{id} [patch]
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	var req updateLeadStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	customer, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), domain.LeadStatus(req.Status), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// Stats counts leads per status.
//
// @Summary      Lead statistics
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /contact/stats [get]
func (h *LeadHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
