package ports

import (
	"context"
	"time"

	"github.com/vreta/crm-api/internal/core/domain"
)

// UserFilter selects users. Zero-valued fields do not constrain the query.
type UserFilter struct {
	Username    string
	Email       string
	Role        domain.Role
	ExcludeRole domain.Role // e.g. admin, to hide administrators from listings
	Status      domain.UserStatus
	// Search is a case-insensitive substring match on username, fullName or email.
	Search string
}

// UserRepository is the credential store. It is the only writer of user records.
type UserRepository interface {
	// FindOne returns domain.ErrUserNotFound when nothing matches.
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)
	// Insert returns *domain.ConflictError on a duplicate username or email.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateByID(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// ToggleStatus atomically flips active/inactive and keeps isActive in sync.
	ToggleStatus(ctx context.Context, id string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	DeleteByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	// List returns matches newest first; limit <= 0 means no limit.
	List(ctx context.Context, filter UserFilter, limit int) ([]*domain.User, error)
	CountByDay(ctx context.Context, since time.Time) ([]domain.DayCount, error)
	CountByRole(ctx context.Context) ([]domain.CategoryCount, error)
}
