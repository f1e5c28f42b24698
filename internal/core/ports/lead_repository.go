package ports

import (
	"context"
	"time"

	"github.com/vreta/crm-api/internal/core/domain"
)

// CustomerFilter selects customers. Zero-valued fields do not constrain the query.
type CustomerFilter struct {
	Status domain.LeadStatus
	// Search is a case-insensitive substring match on fullName, email or phone.
	Search string
}

// CustomerSort picks the ordering of customer listings.
type CustomerSort int

const (
	SortByCreated CustomerSort = iota
	SortByLastUpdated
)

type CustomerRepository interface {
	// Insert returns *domain.ConflictError on a duplicate email.
	Insert(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	// FindByID returns domain.ErrCustomerNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string, at time.Time) (*domain.Customer, error)
	Count(ctx context.Context, filter CustomerFilter) (int64, error)
	// List returns matches newest first by sort; limit <= 0 means no limit.
	List(ctx context.Context, filter CustomerFilter, sort CustomerSort, limit int) ([]*domain.Customer, error)
	CountByDay(ctx context.Context, since time.Time) ([]domain.DayCount, error)
	CountByLocation(ctx context.Context) ([]domain.CategoryCount, error)
	CountByStatus(ctx context.Context) ([]domain.CategoryCount, error)
}

// ContactFilter selects contacts.
type ContactFilter struct {
	// Search is a case-insensitive substring match on firstName, email or phone.
	Search string
}

type ContactRepository interface {
	// Insert returns *domain.ConflictError on a duplicate email.
	Insert(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	Count(ctx context.Context, filter ContactFilter) (int64, error)
	List(ctx context.Context, filter ContactFilter, limit int) ([]*domain.Contact, error)
	CountByDay(ctx context.Context, since time.Time) ([]domain.DayCount, error)
}

// IdempotencyStore remembers which record a client-supplied key produced.
type IdempotencyStore interface {
	// Lookup returns the remembered id, or "" when the key is unseen.
	Lookup(ctx context.Context, scope, key string) (string, error)
	Remember(ctx context.Context, scope, key, id string) error
}
