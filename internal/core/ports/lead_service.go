package ports

import (
	"context"

	"github.com/vreta/crm-api/internal/core/domain"
)

// CaptureCustomerInput is the public lead form. The validate tags are the
// single source of its rules for both the HTTP layer and the service.
type CaptureCustomerInput struct {
	FullName       string `json:"fullName" validate:"required"`
	Email          string `json:"email"    validate:"required,email"`
	Phone          string `json:"phone"    validate:"required,len=10,numeric"`
	Location       string `json:"location" validate:"required,oneof=Hyderabad Mumbai Delhi Bangalore Chennai Other"`
	IdempotencyKey string `json:"-"`
}

// CaptureResult reports whether the customer was created by this call or
// replayed from an earlier call with the same idempotency key.
type CaptureResult struct {
	Customer       *domain.Customer
	AlreadyExisted bool
}

type SubmitContactInput struct {
	FirstName string `json:"firstName" validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"     validate:"required"`
	Location  string `json:"location"  validate:"required"`
}

// LeadStats maps a lead status to its count; "total" sums all of them.
type LeadStats map[string]int64

type LeadService interface {
	CaptureCustomer(ctx context.Context, in CaptureCustomerInput) (*CaptureResult, error)
	SubmitContact(ctx context.Context, in SubmitContactInput) (*domain.Contact, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	ListByStatus(ctx context.Context, status domain.LeadStatus) ([]*domain.Customer, error)
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Customer, error)
	Stats(ctx context.Context) (LeadStats, error)
}
