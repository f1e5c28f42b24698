package ports

import (
	"context"

	"github.com/vreta/crm-api/internal/core/domain"
)

// CreateUserInput is the admin provisioning payload. Role is advisory: anything
// outside manager/employee becomes employee. Passwords are capped at 72
// bytes, the most bcrypt will hash.
type CreateUserInput struct {
	Username   string      `json:"username"   validate:"required"`
	Password   string      `json:"password"   validate:"required,min=6,max=72"`
	Email      string      `json:"email"      validate:"omitempty,email"`
	FullName   string      `json:"fullName"`
	Phone      string      `json:"phone"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
	Position   string      `json:"position"`
}

// BootstrapAdminInput seeds the first administrator.
type BootstrapAdminInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email"    validate:"omitempty,email"`
	FullName string `json:"fullName"`
}

type AdminService interface {
	Dashboard(ctx context.Context) (*domain.DashboardSummary, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	ToggleUserStatus(ctx context.Context, id string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	ListContacts(ctx context.Context) ([]*domain.Contact, error)
	Search(ctx context.Context, query string, scope domain.SearchScope) (*domain.SearchResult, error)
	Analytics(ctx context.Context, periodDays int) (*domain.Analytics, error)
}
