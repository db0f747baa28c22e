package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"schoolsite-backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepo handles user database operations
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// normalizeEmail makes lookups case-insensitive
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create creates a new user
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	exists, err := r.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserAlreadyExists
	}

	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	return r.db.queryRow(ctx, `
		INSERT INTO users (email, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetActiveByEmail retrieves an active user by email. Inactive accounts are
// reported as not found.
func (r *UserRepo) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.queryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? AND is_active = ?",
		normalizeEmail(email), true,
	))
}

// List retrieves all users
func (r *UserRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.query(ctx, "SELECT "+userColumns+" FROM users ORDER BY email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdatePassword replaces the password hash of a user
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.exec(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, now(), id,
	)
	if err != nil {
		return err
	}
	return affected(result, ErrUserNotFound)
}

// SetActive enables or disables a user
func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.exec(ctx,
		"UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?",
		active, now(), id,
	)
	if err != nil {
		return err
	}
	return affected(result, ErrUserNotFound)
}

// Count returns the total number of users
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.queryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// ExistsByEmail checks if a user with the given email exists
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.queryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", normalizeEmail(email)).Scan(&count)
	return count > 0, err
}
