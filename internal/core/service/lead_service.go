package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
	"github.com/vreta/crm-api/internal/pkg/metrics"
	"github.com/vreta/crm-api/internal/pkg/validation"
)

const customerIdempotencyScope = "customer"

// LeadService handles the public lead forms and staff follow-up of leads.
type LeadService struct {
	customers   ports.CustomerRepository
	contacts    ports.ContactRepository
	idempotency ports.IdempotencyStore
	validate    *validation.Validator
	log         zerolog.Logger
	now         func() time.Time
}

func NewLeadService(
	customers ports.CustomerRepository,
	contacts ports.ContactRepository,
	idempotency ports.IdempotencyStore,
	log zerolog.Logger,
) *LeadService {
	return &LeadService{
		customers:   customers,
		contacts:    contacts,
		idempotency: idempotency,
		validate:    validation.New(),
		log:         log,
		now:         time.Now,
	}
}

// CaptureCustomer stores a lead from the public contact form. When an
// idempotency key was already used, the earlier customer is returned instead.
func (s *LeadService) CaptureCustomer(ctx context.Context, in ports.CaptureCustomerInput) (*ports.CaptureResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if existing := s.replay(ctx, in.IdempotencyKey); existing != nil {
			return &ports.CaptureResult{Customer: existing, AlreadyExisted: true}, nil
		}
	}

	now := s.now().UTC()
	c := &domain.Customer{
		FullName:    in.FullName,
		Email:       in.Email,
		Phone:       in.Phone,
		Location:    in.Location,
		Status:      domain.LeadNew,
		CreatedAt:   now,
		LastUpdated: now,
	}

	created, err := s.customers.Insert(ctx, c)
	if err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if err := s.idempotency.Remember(ctx, customerIdempotencyScope, in.IdempotencyKey, created.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	metrics.LeadsCapturedTotal.WithLabelValues("customer").Inc()
	s.log.Info().Str("customer_id", created.ID).Str("location", created.Location).Msg("customer lead captured")
	return &ports.CaptureResult{Customer: created}, nil
}

// replay returns the customer an idempotency key produced earlier, or nil.
// Store failures are logged and treated as a miss.
func (s *LeadService) replay(ctx context.Context, key string) *domain.Customer {
	id, err := s.idempotency.Lookup(ctx, customerIdempotencyScope, key)
	if err != nil {
		metrics.IdempotencyLookupsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, processing anyway")
		return nil
	}
	if id == "" {
		metrics.IdempotencyLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}

	existing, err := s.customers.FindByID(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Str("customer_id", id).Msg("idempotent customer not found")
		metrics.IdempotencyLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.IdempotencyLookupsTotal.WithLabelValues("hit").Inc()
	s.log.Info().Str("idempotency_key", key).Str("customer_id", id).Msg("idempotent replay")
	return existing
}

// SubmitContact stores a general inquiry.
func (s *LeadService) SubmitContact(ctx context.Context, in ports.SubmitContactInput) (*domain.Contact, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	c := &domain.Contact{
		FirstName: in.FirstName,
		Email:     in.Email,
		Phone:     in.Phone,
		Location:  in.Location,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.contacts.Insert(ctx, c)
	if err != nil {
		return nil, err
	}

	metrics.LeadsCapturedTotal.WithLabelValues("contact").Inc()
	s.log.Info().Str("contact_id", created.ID).Msg("contact submitted")
	return created, nil
}

func (s *LeadService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	list, err := s.customers.List(ctx, ports.CustomerFilter{}, ports.SortByCreated, 0)
	if err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

// ListByStatus returns customers in one follow-up state, most recently touched first.
func (s *LeadService) ListByStatus(ctx context.Context, status domain.LeadStatus) ([]*domain.Customer, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown lead status %q", status))
	}
	list, err := s.customers.List(ctx, ports.CustomerFilter{Status: status}, ports.SortByLastUpdated, 0)
	if err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

func (s *LeadService) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Customer, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown lead status %q", status))
	}
	updated, err := s.customers.UpdateStatus(ctx, id, status, notes, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("customer_id", id).Str("status", string(status)).Msg("lead status updated")
	return updated, nil
}

// Stats counts customers per status. The base statuses and "total" are always present.
func (s *LeadService) Stats(ctx context.Context) (ports.LeadStats, error) {
	groups, err := s.customers.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("lead stats: %w", err)
	}

	stats := ports.LeadStats{"total": 0}
	for _, st := range domain.BaseLeadStatuses {
		stats[string(st)] = 0
	}
	for _, g := range groups {
		stats[g.Category] = g.Count
		stats["total"] += g.Count
	}
	return stats, nil
}
