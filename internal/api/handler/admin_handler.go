package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

// AdminHandler serves the /admin routes. Every route sits behind the admin guard.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Dashboard returns collection counts and recent records.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DashboardSummary
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	summary, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// ListUsers returns all non-admin users, newest first.
//
// @Summary      List staff users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns one user.
//
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser provisions a manager or employee account.
//
// @Summary      Create user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  userCreatedResponse
// @Failure      400   {object}  errorResponse
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userCreatedResponse{Message: "User created successfully", User: user})
}

// UpdateUser applies a partial update to a user.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ToggleUserStatus flips a user between active and inactive.
//
// @Summary      Toggle user status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/status [patch]
func (h *AdminHandler) ToggleUserStatus(c echo.Context) error {
	user, err := h.service.ToggleUserStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user.
//
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// ListCustomers returns every captured customer, newest first.
//
// @Summary      List customers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Customer
// @Router       /admin/customers [get]
func (h *AdminHandler) ListCustomers(c echo.Context) error {
	customers, err := h.service.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// ListContacts returns every contact inquiry, newest first.
//
// @Summary      List contacts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Contact
// @Router       /admin/contacts [get]
func (h *AdminHandler) ListContacts(c echo.Context) error {
	contacts, err := h.service.ListContacts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contacts)
}

// Search matches users, customers and contacts by substring.
//
// @Summary      Search
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  true   "Search text"
// @Param        type   query     string  false  "users, customers or contacts"
// @Success      200    {object}  searchResponse
// @Failure      400    {object}  errorResponse
// @Router       /admin/search [get]
func (h *AdminHandler) Search(c echo.Context) error {
	scope := domain.SearchScope(strings.TrimSpace(c.QueryParam("type")))
	res, err := h.service.Search(c.Request().Context(), c.QueryParam("query"), scope)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSearchResponse(res))
}

// Analytics returns registration series and distributions.
//
// @Summary      Analytics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        period  query     int  false  "Window in days (default 30)"
// @Success      200     {object}  domain.Analytics
// @Router       /admin/analytics [get]
func (h *AdminHandler) Analytics(c echo.Context) error {
	// Anything that is not a whole number falls back to the default window.
	period, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("period")))
	if err != nil {
		period = 0
	}

	out, err := h.service.Analytics(c.Request().Context(), period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
