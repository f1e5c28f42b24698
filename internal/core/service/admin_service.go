package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
	"github.com/vreta/crm-api/internal/pkg/metrics"
	"github.com/vreta/crm-api/internal/pkg/validation"
)

const (
	recentLimit       = 5
	DefaultPeriodDays = 30
	MaxPeriodDays     = 3650
)

// AdminService implements the admin dashboard: user management, search and
// analytics over the users, customers and contacts collections.
type AdminService struct {
	users     ports.UserRepository
	customers ports.CustomerRepository
	contacts  ports.ContactRepository
	hasher    ports.PasswordHasher
	validate  *validation.Validator
	log       zerolog.Logger
	now       func() time.Time
}

func NewAdminService(
	users ports.UserRepository,
	customers ports.CustomerRepository,
	contacts ports.ContactRepository,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		customers: customers,
		contacts:  contacts,
		hasher:    hasher,
		validate:  validation.New(),
		log:       log,
		now:       time.Now,
	}
}

var staffOnly = ports.UserFilter{ExcludeRole: domain.RoleAdmin}

// Dashboard returns collection counts and the five newest records of each.
// Admin accounts are excluded from every user tally.
func (s *AdminService) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	var (
		stats domain.DashboardStats
		err   error
	)

	counts := []struct {
		dst    *int64
		filter ports.UserFilter
	}{
		{&stats.TotalUsers, staffOnly},
		{&stats.ActiveUsers, ports.UserFilter{ExcludeRole: domain.RoleAdmin, Status: domain.StatusActive}},
		{&stats.InactiveUsers, ports.UserFilter{ExcludeRole: domain.RoleAdmin, Status: domain.StatusInactive}},
		{&stats.TotalEmployees, ports.UserFilter{Role: domain.RoleEmployee}},
		{&stats.TotalManagers, ports.UserFilter{Role: domain.RoleManager}},
	}
	for _, c := range counts {
		if *c.dst, err = s.users.Count(ctx, c.filter); err != nil {
			return nil, fmt.Errorf("dashboard: count users: %w", err)
		}
	}
	if stats.TotalCustomers, err = s.customers.Count(ctx, ports.CustomerFilter{}); err != nil {
		return nil, fmt.Errorf("dashboard: count customers: %w", err)
	}
	if stats.TotalContacts, err = s.contacts.Count(ctx, ports.ContactFilter{}); err != nil {
		return nil, fmt.Errorf("dashboard: count contacts: %w", err)
	}

	summary := &domain.DashboardSummary{Stats: stats}
	if summary.RecentCustomers, err = s.customers.List(ctx, ports.CustomerFilter{}, ports.SortByCreated, recentLimit); err != nil {
		return nil, fmt.Errorf("dashboard: recent customers: %w", err)
	}
	if summary.RecentContacts, err = s.contacts.List(ctx, ports.ContactFilter{}, recentLimit); err != nil {
		return nil, fmt.Errorf("dashboard: recent contacts: %w", err)
	}
	if summary.RecentUsers, err = s.users.List(ctx, staffOnly, recentLimit); err != nil {
		return nil, fmt.Errorf("dashboard: recent users: %w", err)
	}
	summary.RecentCustomers = nonNil(summary.RecentCustomers)
	summary.RecentContacts = nonNil(summary.RecentContacts)
	summary.RecentUsers = nonNil(summary.RecentUsers)
	return summary, nil
}

// ListUsers returns every non-admin user, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	list, err := s.users.List(ctx, staffOnly, 0)
	if err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// CreateUser provisions a manager or employee. Any other requested role is
// downgraded to employee; a taken username or email is a ConflictError.
func (s *AdminService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	username, email := in.Username, in.Email

	if err := s.ensureUnique(ctx, "username", ports.UserFilter{Username: username}); err != nil {
		return nil, err
	}
	if email != "" {
		if err := s.ensureUnique(ctx, "email", ports.UserFilter{Email: email}); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.ProvisionableRole(in.Role),
		Status:       domain.StatusActive,
		Department:   orDefault(in.Department, domain.DefaultDepartment),
		Position:     orDefault(in.Position, domain.DefaultPosition),
		HireDate:     now,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.UsersProvisionedTotal.WithLabelValues(string(created.Role)).Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

func (s *AdminService) ensureUnique(ctx context.Context, field string, filter ports.UserFilter) error {
	_, err := s.users.FindOne(ctx, filter)
	switch {
	case err == nil:
		return &domain.ConflictError{Entity: "user", Field: field}
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("check %s: %w", field, err)
	}
}

// UpdateUser applies a partial update. Role changes are only possible here.
func (s *AdminService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		if trimmed == "" {
			return nil, domain.NewValidationError("username", "must not be empty")
		}
		patch.Username = &trimmed
	}
	if patch.Email != nil {
		trimmed := strings.TrimSpace(*patch.Email)
		if err := s.validate.Var("email", trimmed, "omitempty,email"); err != nil {
			return nil, err
		}
		patch.Email = &trimmed
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, domain.NewValidationError("role", "must be one of: admin manager employee")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of: active inactive")
	}
	if patch.Empty() {
		return s.users.FindByID(ctx, id)
	}

	updated, err := s.users.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// ToggleUserStatus flips active/inactive; applying it twice restores the
// original status.
func (s *AdminService) ToggleUserStatus(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.ToggleStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Str("status", string(user.Status)).Msg("user status toggled")
	return user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrUserNotFound
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *AdminService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	list, err := s.customers.List(ctx, ports.CustomerFilter{}, ports.SortByCreated, 0)
	if err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

func (s *AdminService) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	list, err := s.contacts.List(ctx, ports.ContactFilter{}, 0)
	if err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

// Search runs a case-insensitive substring match over the collections in scope.
func (s *AdminService) Search(ctx context.Context, query string, scope domain.SearchScope) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("query", domain.ErrEmptySearchQuery.Error())
	}
	if !scope.Valid() {
		return nil, domain.NewValidationError("type", "must be one of: users customers contacts")
	}

	res := &domain.SearchResult{}
	var err error
	if scope.Includes(domain.ScopeUsers) {
		if res.Users, err = s.users.List(ctx, ports.UserFilter{ExcludeRole: domain.RoleAdmin, Search: query}, 0); err != nil {
			return nil, fmt.Errorf("search users: %w", err)
		}
		res.Users = nonNil(res.Users)
	}
	if scope.Includes(domain.ScopeCustomers) {
		if res.Customers, err = s.customers.List(ctx, ports.CustomerFilter{Search: query}, ports.SortByCreated, 0); err != nil {
			return nil, fmt.Errorf("search customers: %w", err)
		}
		res.Customers = nonNil(res.Customers)
	}
	if scope.Includes(domain.ScopeContacts) {
		if res.Contacts, err = s.contacts.List(ctx, ports.ContactFilter{Search: query}, 0); err != nil {
			return nil, fmt.Errorf("search contacts: %w", err)
		}
		res.Contacts = nonNil(res.Contacts)
	}
	return res, nil
}

// Analytics buckets records created in the trailing periodDays window by UTC
// day, and reports role and location distributions. periodDays <= 0 selects
// DefaultPeriodDays; longer windows are capped at MaxPeriodDays.
func (s *AdminService) Analytics(ctx context.Context, periodDays int) (*domain.Analytics, error) {
	switch {
	case periodDays <= 0:
		periodDays = DefaultPeriodDays
	case periodDays > MaxPeriodDays:
		periodDays = MaxPeriodDays
	}
	since := s.now().UTC().AddDate(0, 0, -periodDays)

	out := &domain.Analytics{PeriodDays: periodDays}
	var err error
	if out.UserRegistrations, err = s.users.CountByDay(ctx, since); err != nil {
		return nil, fmt.Errorf("analytics: user registrations: %w", err)
	}
	if out.CustomerRegistrations, err = s.customers.CountByDay(ctx, since); err != nil {
		return nil, fmt.Errorf("analytics: customer registrations: %w", err)
	}
	if out.ContactSubmissions, err = s.contacts.CountByDay(ctx, since); err != nil {
		return nil, fmt.Errorf("analytics: contact submissions: %w", err)
	}
	if out.RoleDistribution, err = s.users.CountByRole(ctx); err != nil {
		return nil, fmt.Errorf("analytics: role distribution: %w", err)
	}
	if out.LocationDistribution, err = s.customers.CountByLocation(ctx); err != nil {
		return nil, fmt.Errorf("analytics: location distribution: %w", err)
	}

	out.UserRegistrations = nonNil(out.UserRegistrations)
	out.CustomerRegistrations = nonNil(out.CustomerRegistrations)
	out.ContactSubmissions = nonNil(out.ContactSubmissions)
	out.RoleDistribution = nonNil(out.RoleDistribution)
	out.LocationDistribution = nonNil(out.LocationDistribution)
	return out, nil
}

// BootstrapAdmin creates the first administrator when none exists yet. It
// reports whether a user was created.
func (s *AdminService) BootstrapAdmin(ctx context.Context, in ports.BootstrapAdminInput) (bool, error) {
	_, err := s.users.FindOne(ctx, ports.UserFilter{Role: domain.RoleAdmin})
	if err == nil {
		s.log.Info().Msg("admin user already exists")
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return false, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	now := s.now().UTC()
	admin, err := s.users.Insert(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		Department:   "IT",
		Position:     "System Administrator",
		HireDate:     now,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, err
	}

	s.log.Info().Str("user_id", admin.ID).Str("username", admin.Username).Msg("admin user created")
	return true, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
