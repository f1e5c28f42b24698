package ports

import (
	"context"
	"time"

	"github.com/vreta/crm-api/internal/core/domain"
)

// PasswordHasher is a one-way salted hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports a mismatch as (false, nil); err is reserved for malformed hashes.
	Verify(plaintext, hash string) (bool, error)
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	Role      domain.Role
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(role domain.Role, subjectID string) (string, error)
	// Verify returns an error wrapping domain.ErrInvalidToken on any failure.
	Verify(token string) (*Claims, error)
}

// LoginRecorder persists lastLogin on a best-effort basis.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID string, at time.Time) error
}

type LoginInput struct {
	Username string
	Password string
	Role     domain.Role
}

type LoginResult struct {
	Token   string
	Message string
	User    *domain.User
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}
