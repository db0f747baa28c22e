package database

import (
	"context"
	"errors"
	"time"

	"schoolsite-backend/internal/models"
)

var ErrOTPNotFound = errors.New("otp not found")

// OTPRepo handles one-time code storage
type OTPRepo struct {
	db *DB
}

// NewOTPRepo creates a new OTP repository
func NewOTPRepo(db *DB) *OTPRepo {
	return &OTPRepo{db: db}
}

// Create stores a new unused code
func (r *OTPRepo) Create(ctx context.Context, otp *models.OTP) error {
	otp.CreatedAt = now()
	otp.Used = false
	return r.db.queryRow(ctx, `
		INSERT INTO otps (email, otp_code, purpose, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, otp.Email, otp.Code, otp.Purpose, otp.ExpiresAt.UTC(), false, otp.CreatedAt).Scan(&otp.ID)
}

// Consume marks the newest unused, unexpired code matching email, code and
// purpose as used. Expiry is compared in Go so both dialects agree on it.
func (r *OTPRepo) Consume(ctx context.Context, email, code, purpose string, at time.Time) error {
	rows, err := r.db.query(ctx, `
		SELECT id, expires_at FROM otps
		WHERE email = ? AND otp_code = ? AND purpose = ? AND used = ?
		ORDER BY id DESC
	`, email, code, purpose, false)
	if err != nil {
		return err
	}

	var id int64
	for rows.Next() {
		var candidate int64
		var expiresAt time.Time
		if err := rows.Scan(&candidate, &expiresAt); err != nil {
			rows.Close()
			return err
		}
		if at.Before(expiresAt) {
			id = candidate
			break
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if id == 0 {
		return ErrOTPNotFound
	}

	// used = false in the predicate keeps two concurrent redemptions from
	// both succeeding
	result, err := r.db.exec(ctx, "UPDATE otps SET used = ? WHERE id = ? AND used = ?", true, id, false)
	if err != nil {
		return err
	}
	return affected(result, ErrOTPNotFound)
}
