package database

import (
	"context"
	"database/sql"
	"errors"

	"schoolsite-backend/internal/models"
)

var ErrTrusteeNotFound = errors.New("trustee not found")

// TrusteeRepo handles trustee database operations
type TrusteeRepo struct {
	db *DB
}

// NewTrusteeRepo creates a new trustee repository
func NewTrusteeRepo(db *DB) *TrusteeRepo {
	return &TrusteeRepo{db: db}
}

const trusteeColumns = `id, name, role, image, position, created_at`

func scanTrustee(row interface{ Scan(...any) error }) (*models.Trustee, error) {
	t := &models.Trustee{}
	err := row.Scan(&t.ID, &t.Name, &t.Role, &t.Image, &t.Position, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrusteeNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves trustees by position
func (r *TrusteeRepo) List(ctx context.Context) ([]*models.Trustee, error) {
	rows, err := r.db.query(ctx, "SELECT "+trusteeColumns+" FROM trustees ORDER BY position ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trustees := []*models.Trustee{}
	for rows.Next() {
		t, err := scanTrustee(rows)
		if err != nil {
			return nil, err
		}
		trustees = append(trustees, t)
	}
	return trustees, rows.Err()
}

// GetByID retrieves a trustee by ID
func (r *TrusteeRepo) GetByID(ctx context.Context, id int64) (*models.Trustee, error) {
	return scanTrustee(r.db.queryRow(ctx, "SELECT "+trusteeColumns+" FROM trustees WHERE id = ?", id))
}

// Create creates a new trustee
func (r *TrusteeRepo) Create(ctx context.Context, t *models.Trustee) error {
	t.CreatedAt = now()
	return r.db.queryRow(ctx, `
		INSERT INTO trustees (name, role, image, position, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, t.Name, t.Role, t.Image, t.Position, t.CreatedAt).Scan(&t.ID)
}

// Update replaces every editable field of a trustee
func (r *TrusteeRepo) Update(ctx context.Context, t *models.Trustee) error {
	result, err := r.db.exec(ctx, `
		UPDATE trustees
		SET name = ?, role = ?, image = ?, position = ?
		WHERE id = ?
	`, t.Name, t.Role, t.Image, t.Position, t.ID)
	if err != nil {
		return err
	}
	return affected(result, ErrTrusteeNotFound)
}

// Delete deletes a trustee and returns the removed row
func (r *TrusteeRepo) Delete(ctx context.Context, id int64) (*models.Trustee, error) {
	return scanTrustee(r.db.queryRow(ctx,
		"DELETE FROM trustees WHERE id = ? RETURNING "+trusteeColumns, id,
	))
}
