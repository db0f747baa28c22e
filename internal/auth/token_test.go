package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"schoolsite-backend/internal/models"
)

const testSecret = "test-secret-with-enough-entropy-123"

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func TestTokenRoundTrip(t *testing.T) {
	clock := newTestClock()
	codec := NewTokenCodec(testSecret, 0, WithClock(clock.Now))

	cases := []struct {
		userID int64
		role   models.Role
	}{
		{1, models.RoleSuperAdmin},
		{42, models.RoleUser},
		{1 << 40, models.RoleSuperAdmin},
	}

	for _, tc := range cases {
		token, expiresAt, err := codec.Issue(tc.userID, tc.role)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if want := clock.Now().Add(DefaultTokenTTL); !expiresAt.Equal(want) {
			t.Fatalf("expiresAt = %v, want %v", expiresAt, want)
		}

		identity, err := codec.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if identity.UserID != tc.userID || identity.Role != tc.role {
			t.Fatalf("got %+v, want {%d %s}", identity, tc.userID, tc.role)
		}
	}
}

func TestTokenExpiry(t *testing.T) {
	clock := newTestClock()
	codec := NewTokenCodec(testSecret, 24*time.Hour, WithClock(clock.Now))

	token, _, err := codec.Issue(7, models.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.Advance(24*time.Hour - time.Second)
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("token should be valid one second before expiry: %v", err)
	}

	clock.Advance(time.Second)
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at expiry, got %v", err)
	}

	clock.Advance(30 * 24 * time.Hour)
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired long after expiry, got %v", err)
	}
}

func TestTokenTamperDetected(t *testing.T) {
	codec := NewTokenCodec(testSecret, 0)
	token, _, err := codec.Issue(3, models.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// The last character of a base64url segment may only carry padding
	// bits, so flipping it can decode to the same bytes.
	segmentEnd := map[int]bool{len(token) - 1: true}
	for i := range token {
		if i+1 < len(token) && token[i+1] == '.' {
			segmentEnd[i] = true
		}
	}

	for i := range token {
		if segmentEnd[i] {
			continue
		}
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("byte %d altered: expected ErrInvalidToken, got %v", i, err)
		}
	}
}

func TestTokenRejectsForeignTokens(t *testing.T) {
	clock := newTestClock()
	codec := NewTokenCodec(testSecret, 0, WithClock(clock.Now))
	other := NewTokenCodec("a-different-secret", 0, WithClock(clock.Now))

	foreign, _, err := other.Issue(1, models.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 1, "role": "SUPER_ADMIN"})
	noExpToken, err := noExp.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"userId": 1, "role": "SUPER_ADMIN", "exp": clock.Now().Add(time.Hour).Unix(),
	})
	hs512Token, err := hs512.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	unknownRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 1, "role": "ROOT", "exp": clock.Now().Add(time.Hour).Unix(),
	})
	unknownRoleToken, err := unknownRole.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"two segments":  "abc.def",
		"other secret":  foreign,
		"missing exp":   noExpToken,
		"wrong alg":     hs512Token,
		"unknown role":  unknownRoleToken,
		"trailing junk": foreign + "x",
		"alg none":      strings.Join([]string{"eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0", "eyJ1c2VySWQiOjEsInJvbGUiOiJTVVBFUl9BRE1JTiJ9", ""}, "."),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
