package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vreta/crm-api/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", 0)

	signed, err := iss.Issue(domain.RoleManager, "64f0c0ffee")
	require.NoError(t, err)

	claims, err := iss.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, "64f0c0ffee", claims.SubjectID)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
	assert.Equal(t, time.Hour, DefaultTTL, "session tokens live exactly one hour")
}

func TestIssuer_ValidUntilExpiry(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := NewIssuer("secret", time.Hour).WithClock(fixedClock(start))

	signed, err := iss.Issue(domain.RoleEmployee, "u1")
	require.NoError(t, err)

	iss.WithClock(fixedClock(start.Add(59 * time.Minute)))
	_, err = iss.Verify(signed)
	assert.NoError(t, err)

	iss.WithClock(fixedClock(start.Add(61 * time.Minute)))
	_, err = iss.Verify(signed)
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestIssuer_DifferentSecret(t *testing.T) {
	signed, err := NewIssuer("one", 0).Issue(domain.RoleAdmin, "u1")
	require.NoError(t, err)

	_, err = NewIssuer("two", 0).Verify(signed)
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestIssuer_Tampered(t *testing.T) {
	iss := NewIssuer("secret", 0)
	signed, err := iss.Issue(domain.RoleEmployee, "u1")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"role":"admin","sub":"u1","iss":"vreta-crm","exp":4102444800}`))

	_, err = iss.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestIssuer_Malformed(t *testing.T) {
	_, err := NewIssuer("secret", 0).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := SessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", 0).Verify(signed)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestIssuer_RequiresExpiry(t *testing.T) {
	claims := SessionClaims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "u1"},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", 0).Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
