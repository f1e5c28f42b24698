package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vreta/crm-api/internal/core/domain"
	"github.com/vreta/crm-api/internal/core/ports"
	"github.com/vreta/crm-api/internal/pkg/metrics"
)

// dummyPassword is hashed once and compared against when the username is
// unknown, so that path costs one bcrypt comparison like a wrong password.
const dummyPassword = "crm-api:unknown-user"

// AuthService implements per-role login.
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	recorder ports.LoginRecorder
	log      zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	recorder ports.LoginRecorder,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

// Login looks the user up by (username, role), verifies the password and
// issues a token for that role. Every rejection is ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, s.reject(in.Role, "missing_fields")
	}

	user, err := s.users.FindOne(ctx, ports.UserFilter{Username: username, Role: in.Role})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.equalizeTiming(in.Password)
			return nil, s.reject(in.Role, "unknown_user")
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password verification failed")
		return nil, s.reject(in.Role, "hash_error")
	}
	if !ok {
		return nil, s.reject(in.Role, "bad_password")
	}
	if user.Status == domain.StatusInactive {
		return nil, s.reject(in.Role, "inactive")
	}

	// Best effort: a failed lastLogin write never fails the login.
	if err := s.recorder.RecordLogin(ctx, user.ID, s.now().UTC()); err != nil {
		metrics.LastLoginFailuresTotal.WithLabelValues("enqueue").Inc()
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("could not record last login")
	}

	token, err := s.tokens.Issue(in.Role, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(string(in.Role), "success").Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", string(in.Role)).Msg("login successful")

	return &ports.LoginResult{
		Token:   token,
		Message: in.Role.Title() + " login successful",
		User:    user,
	}, nil
}

func (s *AuthService) reject(role domain.Role, reason string) error {
	metrics.LoginAttemptsTotal.WithLabelValues(string(role), "rejected").Inc()
	s.log.Debug().Str("role", string(role)).Str("reason", reason).Msg("login rejected")
	return domain.ErrInvalidCredentials
}

func (s *AuthService) equalizeTiming(plaintext string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(plaintext, s.dummyHash)
	}
}
