package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

// OTPLifetime is how long a one-time code stays redeemable
const OTPLifetime = 5 * time.Minute

var (
	ErrMissingCredentials = errors.New("email and password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingPassword    = errors.New("new password is required")
	ErrMissingPurpose     = errors.New("purpose is required")
	ErrMissingOTP         = errors.New("otp and purpose required")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
)

// UserStore is the part of the user repository the service needs
type UserStore interface {
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// OTPStore persists one-time codes
type OTPStore interface {
	Create(ctx context.Context, otp *models.OTP) error
	Consume(ctx context.Context, email, code, purpose string, at time.Time) error
}

// Service handles authentication logic
type Service struct {
	users     UserStore
	otps      OTPStore
	codec     *TokenCodec
	extractor *Extractor
	now       func() time.Time
}

// NewService creates a new auth service
func NewService(users UserStore, otps OTPStore, codec *TokenCodec, extractor *Extractor) *Service {
	return &Service{
		users:     users,
		otps:      otps,
		codec:     codec,
		extractor: extractor,
		now:       time.Now,
	}
}

// LoginResult represents a successful login
type LoginResult struct {
	User      models.PublicUser
	Token     string
	ExpiresAt time.Time
}

// Login checks email and password against an active account and issues a
// session token. Unknown email, inactive account and wrong password all
// return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetActiveByEmail(ctx, email)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	valid, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.codec.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:      user.Public(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Identify decodes the caller of r without rejecting anything. It reports
// false when no valid token is present.
func (s *Service) Identify(r *http.Request) (*models.Identity, bool) {
	token, ok := s.extractor.Extract(r)
	if !ok {
		return nil, false
	}
	identity, err := s.codec.Verify(token)
	if err != nil {
		return nil, false
	}
	return identity, true
}

// ChangePassword replaces the password of userID
func (s *Service) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	if newPassword == "" {
		return ErrMissingPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// RequestOTP issues a six digit code for the user's email and purpose
func (s *Service) RequestOTP(ctx context.Context, userID int64, purpose string) (*models.OTP, error) {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return nil, ErrMissingPurpose
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	otp := &models.OTP{
		Email:     user.Email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(OTPLifetime).UTC(),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return nil, err
	}
	return otp, nil
}

// VerifyOTP redeems a code issued to the user for purpose. A code can be
// redeemed once.
func (s *Service) VerifyOTP(ctx context.Context, userID int64, code, purpose string) error {
	code = strings.TrimSpace(code)
	purpose = strings.TrimSpace(purpose)
	if code == "" || purpose == "" {
		return ErrMissingOTP
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.otps.Consume(ctx, user.Email, code, purpose, s.now().UTC())
	if errors.Is(err, database.ErrOTPNotFound) {
		return ErrInvalidOTP
	}
	return err
}

// generateOTPCode returns a uniformly random code in 100000..999999
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
