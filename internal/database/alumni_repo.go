package database

import (
	"context"
	"database/sql"
	"errors"

	"schoolsite-backend/internal/models"
)

var ErrAlumnusNotFound = errors.New("alumnus not found")

// AlumniRepo handles alumni database operations
type AlumniRepo struct {
	db *DB
}

// NewAlumniRepo creates a new alumni repository
func NewAlumniRepo(db *DB) *AlumniRepo {
	return &AlumniRepo{db: db}
}

const alumnusColumns = `id, name, batch, profession, achievement, image, created_at`

func scanAlumnus(row interface{ Scan(...any) error }) (*models.Alumnus, error) {
	a := &models.Alumnus{}
	err := row.Scan(&a.ID, &a.Name, &a.Batch, &a.Profession, &a.Achievement, &a.Image, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlumnusNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List retrieves alumni, most recently added first
func (r *AlumniRepo) List(ctx context.Context) ([]*models.Alumnus, error) {
	rows, err := r.db.query(ctx, "SELECT "+alumnusColumns+" FROM alumni ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alumni := []*models.Alumnus{}
	for rows.Next() {
		a, err := scanAlumnus(rows)
		if err != nil {
			return nil, err
		}
		alumni = append(alumni, a)
	}
	return alumni, rows.Err()
}

// GetByID retrieves an alumnus by ID
func (r *AlumniRepo) GetByID(ctx context.Context, id int64) (*models.Alumnus, error) {
	return scanAlumnus(r.db.queryRow(ctx, "SELECT "+alumnusColumns+" FROM alumni WHERE id = ?", id))
}

// Create creates a new alumnus
func (r *AlumniRepo) Create(ctx context.Context, a *models.Alumnus) error {
	a.CreatedAt = now()
	return r.db.queryRow(ctx, `
		INSERT INTO alumni (name, batch, profession, achievement, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, a.Name, a.Batch, a.Profession, a.Achievement, a.Image, a.CreatedAt).Scan(&a.ID)
}

// Update replaces every editable field of an alumnus
func (r *AlumniRepo) Update(ctx context.Context, a *models.Alumnus) error {
	result, err := r.db.exec(ctx, `
		UPDATE alumni
		SET name = ?, batch = ?, profession = ?, achievement = ?, image = ?
		WHERE id = ?
	`, a.Name, a.Batch, a.Profession, a.Achievement, a.Image, a.ID)
	if err != nil {
		return err
	}
	return affected(result, ErrAlumnusNotFound)
}

// Delete deletes an alumnus
func (r *AlumniRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.exec(ctx, "DELETE FROM alumni WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(result, ErrAlumnusNotFound)
}
