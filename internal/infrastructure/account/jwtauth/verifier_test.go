package jwtauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/riskibarqy/tournament-api/internal/domain/user"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

var verifierNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newTestVerifier(t *testing.T, issuer string) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{Secret: "s3cret", Issuer: issuer, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	v.now = func() time.Time { return verifierNow }
	return v
}

func claimsFor(subject, issuer string, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(verifierNow.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(verifierNow.Add(ttl)),
		},
		Email: subject + "@example.com",
		Role:  "organizer",
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier(Config{Secret: "  "}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestVerifyAccessToken(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t, "tournament-auth")
	valid, err := v.Sign(claimsFor("user-1", "tournament-auth", time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	principal, err := v.VerifyAccessToken(context.Background(), valid)
	if err != nil {
		t.Fatalf("verify valid token: %v", err)
	}
	if principal.UserID != "user-1" || principal.Email != "user-1@example.com" || principal.Role != "organizer" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	other, _ := NewVerifier(Config{Secret: "other", Logger: logging.NewNop()})
	forged, _ := other.Sign(claimsFor("user-1", "tournament-auth", time.Hour))
	expired, _ := v.Sign(claimsFor("user-1", "tournament-auth", -time.Minute))
	wrongIssuer, _ := v.Sign(claimsFor("user-1", "someone-else", time.Hour))
	noSubject, _ := v.Sign(claimsFor("", "tournament-auth", time.Hour))
	noExpiry := claimsFor("user-1", "tournament-auth", time.Hour)
	noExpiry.ExpiresAt = nil
	unbounded, _ := v.Sign(noExpiry)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor("user-1", "tournament-auth", time.Hour)).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		token  string
		reason string
	}{
		{"empty", " ", "token is required"},
		{"garbage", "not-a-jwt", "malformed token"},
		{"forged signature", forged, "invalid signature"},
		{"expired", expired, "token expired"},
		{"wrong issuer", wrongIssuer, "invalid issuer"},
		{"missing subject", noSubject, "subject is empty"},
		{"missing expiry", unbounded, "missing required claim"},
		{"alg none", none, "invalid signature"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.VerifyAccessToken(context.Background(), tc.token)
			if !errors.Is(err, usecase.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("expected reason %q, got %v", tc.reason, err)
			}
		})
	}
}

func TestVerifierCacheHonoursTokenExpiry(t *testing.T) {
	v := newTestVerifier(t, "")
	token, err := v.Sign(claimsFor("user-2", "", 30*time.Second))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.VerifyAccessToken(context.Background(), token); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if _, ok := v.cache.Get(hashToken(token), verifierNow.Add(10*time.Second)); !ok {
		t.Fatalf("expected cached principal before expiry")
	}

	v.now = func() time.Time { return verifierNow.Add(31 * time.Second) }
	if _, ok := v.cache.Get(hashToken(token), v.now()); ok {
		t.Fatalf("cache entry must not outlive the token")
	}
	if _, err := v.VerifyAccessToken(context.Background(), token); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected expired token to be rejected after cache miss, got %v", err)
	}
}

func TestPrincipalCacheEvictsWhenFull(t *testing.T) {
	c := newPrincipalCache(time.Minute, 2)
	c.Set("a", principalFor("a"), verifierNow, time.Time{})
	c.Set("b", principalFor("b"), verifierNow, time.Time{})
	c.Set("c", principalFor("c"), verifierNow, time.Time{})

	if len(c.entries) != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", len(c.entries))
	}
	if _, ok := c.Get("c", verifierNow); !ok {
		t.Fatalf("expected newest entry to be kept")
	}
}

func principalFor(id string) user.Principal { return user.Principal{UserID: id} }
