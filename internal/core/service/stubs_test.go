package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func dayBuckets[T any](items []T, created func(T) time.Time, since time.Time) []domain.DayCount {
	counts := map[string]int64{}
	for _, it := range items {
		if at := created(it); !at.Before(since) {
			counts[at.UTC().Format("2006-01-02")]++
		}
	}
	out := make([]domain.DayCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, domain.DayCount{Day: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	lastLogin map[string]time.Time
	err       error // if set, every call returns it
	lastSince time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*domain.User{}, lastLogin: map[string]time.Time{}}
}

func (r *stubUserRepo) match(u *domain.User, f ports.UserFilter) bool {
	if f.Username != "" && u.Username != f.Username {
		return false
	}
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Role == "" && f.ExcludeRole != "" && u.Role == f.ExcludeRole {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if f.Search != "" && !containsFold(u.Username, f.Search) && !containsFold(u.FullName, f.Search) && !containsFold(u.Email, f.Search) {
		return false
	}
	return true
}

func (r *stubUserRepo) sorted(f ports.UserFilter) []*domain.User {
	var out []*domain.User
	for _, u := range r.users {
		if r.match(u, f) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubUserRepo) FindOne(_ context.Context, f ports.UserFilter) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if list := r.sorted(f); len(list) > 0 {
		return list[0], nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Insert(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, &domain.ConflictError{Entity: "user", Field: "username"}
		}
		if u.Email != "" && existing.Email == u.Email {
			return nil, &domain.ConflictError{Entity: "user", Field: "email"}
		}
	}
	r.seq++
	c := cloneUser(u)
	c.ID = fmt.Sprintf("u%d", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateByID(_ context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Position != nil {
		u.Position = *p.Position
	}
	if p.Status != nil {
		u.Status = *p.Status
		u.IsActive = *p.Status == domain.StatusActive
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ToggleStatus(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Status = u.Status.Toggle()
	u.IsActive = u.Status == domain.StatusActive
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLogin[id] = at
	return nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *stubUserRepo) Count(_ context.Context, f ports.UserFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.sorted(f))), nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	list := r.sorted(f)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *stubUserRepo) CountByDay(_ context.Context, since time.Time) ([]domain.DayCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSince = since
	return dayBuckets(r.sorted(ports.UserFilter{}), func(u *domain.User) time.Time { return u.CreatedAt }, since), nil
}

func (r *stubUserRepo) CountByRole(_ context.Context) ([]domain.CategoryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.Role]int64{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	var out []domain.CategoryCount
	for role, n := range counts {
		out = append(out, domain.CategoryCount{Category: string(role), Count: n})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Customers / contacts
// ---------------------------------------------------------------------------

type stubCustomerRepo struct {
	seq       int
	customers map[string]*domain.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: map[string]*domain.Customer{}}
}

func (r *stubCustomerRepo) Insert(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	for _, existing := range r.customers {
		if existing.Email == c.Email {
			return nil, &domain.ConflictError{Entity: "customer", Field: "email"}
		}
	}
	r.seq++
	clone := *c
	clone.ID = fmt.Sprintf("c%d", r.seq)
	r.customers[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCustomerRepo) UpdateStatus(_ context.Context, id string, status domain.LeadStatus, notes string, at time.Time) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	c.Status, c.Notes, c.LastUpdated = status, notes, at
	clone := *c
	return &clone, nil
}

func (r *stubCustomerRepo) filtered(f ports.CustomerFilter, by ports.CustomerSort) []*domain.Customer {
	var out []*domain.Customer
	for _, c := range r.customers {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !containsFold(c.FullName, f.Search) && !containsFold(c.Email, f.Search) && !containsFold(c.Phone, f.Search) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if by == ports.SortByLastUpdated {
			return out[i].LastUpdated.After(out[j].LastUpdated)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *stubCustomerRepo) Count(_ context.Context, f ports.CustomerFilter) (int64, error) {
	return int64(len(r.filtered(f, ports.SortByCreated))), nil
}

func (r *stubCustomerRepo) List(_ context.Context, f ports.CustomerFilter, by ports.CustomerSort, limit int) ([]*domain.Customer, error) {
	list := r.filtered(f, by)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *stubCustomerRepo) CountByDay(_ context.Context, since time.Time) ([]domain.DayCount, error) {
	return dayBuckets(r.filtered(ports.CustomerFilter{}, ports.SortByCreated), func(c *domain.Customer) time.Time { return c.CreatedAt }, since), nil
}

func (r *stubCustomerRepo) countBy(key func(*domain.Customer) string) []domain.CategoryCount {
	counts := map[string]int64{}
	for _, c := range r.customers {
		counts[key(c)]++
	}
	var out []domain.CategoryCount
	for k, n := range counts {
		out = append(out, domain.CategoryCount{Category: k, Count: n})
	}
	return out
}

func (r *stubCustomerRepo) CountByLocation(_ context.Context) ([]domain.CategoryCount, error) {
	return r.countBy(func(c *domain.Customer) string { return c.Location }), nil
}

func (r *stubCustomerRepo) CountByStatus(_ context.Context) ([]domain.CategoryCount, error) {
	return r.countBy(func(c *domain.Customer) string { return string(c.Status) }), nil
}

type stubContactRepo struct {
	seq      int
	contacts []*domain.Contact
}

func (r *stubContactRepo) Insert(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
	for _, existing := range r.contacts {
		if existing.Email == c.Email {
			return nil, &domain.ConflictError{Entity: "contact", Field: "email"}
		}
	}
	r.seq++
	clone := *c
	clone.ID = fmt.Sprintf("k%d", r.seq)
	r.contacts = append(r.contacts, &clone)
	out := clone
	return &out, nil
}

func (r *stubContactRepo) filtered(f ports.ContactFilter) []*domain.Contact {
	var out []*domain.Contact
	for _, c := range r.contacts {
		if f.Search != "" && !containsFold(c.FirstName, f.Search) && !containsFold(c.Email, f.Search) && !containsFold(c.Phone, f.Search) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubContactRepo) Count(_ context.Context, f ports.ContactFilter) (int64, error) {
	return int64(len(r.filtered(f))), nil
}

func (r *stubContactRepo) List(_ context.Context, f ports.ContactFilter, limit int) ([]*domain.Contact, error) {
	list := r.filtered(f)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *stubContactRepo) CountByDay(_ context.Context, since time.Time) ([]domain.DayCount, error) {
	return dayBuckets(r.filtered(ports.ContactFilter{}), func(c *domain.Contact) time.Time { return c.CreatedAt }, since), nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// syncRecorder writes lastLogin straight to the repo, or fails with err.
type syncRecorder struct {
	repo  *stubUserRepo
	err   error
	calls int
}

func (r *syncRecorder) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return r.repo.UpdateLastLogin(ctx, userID, at)
}

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: map[string]string{}}
}

func (s *stubIdempotency) Lookup(_ context.Context, scope, key string) (string, error) {
	if s.lookupErr != nil {
		return "", s.lookupErr
	}
	return s.keys[scope+":"+key], nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key, id string) error {
	s.keys[scope+":"+key] = id
	return nil
}

// brokenHasher fails verification as a malformed hash would.
type brokenHasher struct{}

func (brokenHasher) Hash(string) (string, error)         { return "", errors.New("boom") }
func (brokenHasher) Verify(string, string) (bool, error) { return false, errors.New("malformed hash") }
