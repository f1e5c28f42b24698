package handler

import (
	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

// errorResponse is the error envelope of every 4xx/5xx response.
type errorResponse struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// --- Admin ---

type createUserRequest = ports.CreateUserInput

type updateUserRequest struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"      validate:"omitempty,email"`
	FullName   *string `json:"fullName"`
	Phone      *string `json:"phone"`
	Role       *string `json:"role"       validate:"omitempty,oneof=admin manager employee"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	Status     *string `json:"status"     validate:"omitempty,oneof=active inactive"`
}

func (r updateUserRequest) toPatch() domain.UserPatch {
	p := domain.UserPatch{
		Username:   r.Username,
		Email:      r.Email,
		FullName:   r.FullName,
		Phone:      r.Phone,
		Department: r.Department,
		Position:   r.Position,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	if r.Status != nil {
		status := domain.UserStatus(*r.Status)
		p.Status = &status
	}
	return p
}

type userCreatedResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// searchResponse carries only the collections that were searched.
type searchResponse struct {
	Users     *[]*domain.User     `json:"users,omitempty"`
	Customers *[]*domain.Customer `json:"customers,omitempty"`
	Contacts  *[]*domain.Contact  `json:"contacts,omitempty"`
}

func newSearchResponse(r *domain.SearchResult) searchResponse {
	var out searchResponse
	if r.Users != nil {
		out.Users = &r.Users
	}
	if r.Customers != nil {
		out.Customers = &r.Customers
	}
	if r.Contacts != nil {
		out.Contacts = &r.Contacts
	}
	return out
}

// --- Leads ---

type captureCustomerRequest = ports.CaptureCustomerInput

type customerCreatedResponse struct {
	Message  string           `json:"message"`
	Customer *domain.Customer `json:"customer"`
}

type submitContactRequest = ports.SubmitContactInput

type contactCreatedResponse struct {
	Message string          `json:"message"`
	Contact *domain.Contact `json:"contact"`
}

type updateLeadStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}
