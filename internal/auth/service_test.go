package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

type fakeUserStore struct {
	users map[int64]*models.User
	err   error
}

func (s *fakeUserStore) GetActiveByEmail(_ context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) && u.IsActive {
			return u, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := s.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeOTPStore struct {
	otps []*models.OTP
}

func (s *fakeOTPStore) Create(_ context.Context, otp *models.OTP) error {
	otp.ID = int64(len(s.otps) + 1)
	s.otps = append(s.otps, otp)
	return nil
}

func (s *fakeOTPStore) Consume(_ context.Context, email, code, purpose string, at time.Time) error {
	for i := len(s.otps) - 1; i >= 0; i-- {
		o := s.otps[i]
		if o.Email == email && o.Code == code && o.Purpose == purpose && !o.Used && at.Before(o.ExpiresAt) {
			o.Used = true
			return nil
		}
	}
	return database.ErrOTPNotFound
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *fakeOTPStore, *fakeClock) {
	t.Helper()
	users := &fakeUserStore{users: map[int64]*models.User{
		1: {ID: 1, Email: "admin@school.test", PasswordHash: mustHash(t, "s3cret"), Role: models.RoleSuperAdmin, IsActive: true},
		2: {ID: 2, Email: "editor@school.test", PasswordHash: mustHash(t, "pw"), Role: models.RoleUser, IsActive: true},
		3: {ID: 3, Email: "gone@school.test", PasswordHash: mustHash(t, "pw"), Role: models.RoleSuperAdmin, IsActive: false},
	}}
	otps := &fakeOTPStore{}
	clock := newTestClock()
	codec := NewTokenCodec(testSecret, 0, WithClock(clock.Now))
	svc := NewService(users, otps, codec, DefaultExtractor("token"))
	svc.now = clock.Now
	return svc, users, otps, clock
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "Admin@School.test", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != 1 || result.User.Role != models.RoleSuperAdmin || result.User.Email != "admin@school.test" {
		t.Fatalf("unexpected user %+v", result.User)
	}
	identity, err := svc.codec.Verify(result.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if identity.UserID != 1 || identity.Role != models.RoleSuperAdmin {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"missing email", "", "s3cret", ErrMissingCredentials},
		{"blank email", "   ", "s3cret", ErrMissingCredentials},
		{"missing password", "admin@school.test", "", ErrMissingCredentials},
		{"unknown email", "nobody@school.test", "s3cret", ErrInvalidCredentials},
		{"wrong password", "admin@school.test", "wrong", ErrInvalidCredentials},
		{"inactive account", "gone@school.test", "pw", ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	storeErr := errors.New("connection refused")
	users.err = storeErr
	_, err := svc.Login(ctx, "admin@school.test", "s3cret")
	if !errors.Is(err, storeErr) || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("store failure must surface as itself, got %v", err)
	}
}

func TestIdentify(t *testing.T) {
	svc, _, _, clock := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if _, ok := svc.Identify(req); ok {
		t.Fatal("request without token must not identify")
	}

	token, _, err := svc.codec.Issue(2, models.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	identity, ok := svc.Identify(req)
	if !ok || identity.UserID != 2 {
		t.Fatalf("expected identity of user 2, got %+v", identity)
	}

	clock.Advance(DefaultTokenTTL)
	if _, ok := svc.Identify(req); ok {
		t.Fatal("expired token must not identify")
	}
}

func TestChangePassword(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, 1, ""); !errors.Is(err, ErrMissingPassword) {
		t.Fatalf("expected ErrMissingPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, 1, "n3w-pass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	ok, err := VerifyPassword("n3w-pass", users.users[1].PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password does not verify: ok=%v err=%v", ok, err)
	}
	if _, err := svc.Login(ctx, "admin@school.test", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if err := svc.ChangePassword(ctx, 99, "x"); !errors.Is(err, database.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestOTPLifecycle(t *testing.T) {
	svc, _, otps, clock := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RequestOTP(ctx, 1, " "); !errors.Is(err, ErrMissingPurpose) {
		t.Fatalf("expected ErrMissingPurpose, got %v", err)
	}

	otp, err := svc.RequestOTP(ctx, 1, "password-change")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if !regexp.MustCompile(`^[1-9][0-9]{5}$`).MatchString(otp.Code) {
		t.Fatalf("code %q is not six digits", otp.Code)
	}
	if otp.Email != "admin@school.test" || len(otps.otps) != 1 {
		t.Fatalf("otp not stored for the user: %+v", otp)
	}
	if want := clock.Now().Add(OTPLifetime); !otp.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", otp.ExpiresAt, want)
	}

	if err := svc.VerifyOTP(ctx, 1, "", "password-change"); !errors.Is(err, ErrMissingOTP) {
		t.Fatalf("expected ErrMissingOTP, got %v", err)
	}
	// another administrator cannot redeem the code
	if err := svc.VerifyOTP(ctx, 2, otp.Code, "password-change"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for another user, got %v", err)
	}
	if err := svc.VerifyOTP(ctx, 1, otp.Code, "other"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for another purpose, got %v", err)
	}
	if err := svc.VerifyOTP(ctx, 1, otp.Code, "password-change"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.VerifyOTP(ctx, 1, otp.Code, "password-change"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("code must be single use, got %v", err)
	}

	expiring, err := svc.RequestOTP(ctx, 1, "password-change")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	clock.Advance(OTPLifetime)
	if err := svc.VerifyOTP(ctx, 1, expiring.Code, "password-change"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expired code must fail, got %v", err)
	}
}
