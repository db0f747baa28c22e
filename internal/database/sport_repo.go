package database

import (
	"context"
	"database/sql"
	"errors"

	"schoolsite-backend/internal/models"
)

var ErrSportNotFound = errors.New("sport not found")

// SportRepo handles sport database operations
type SportRepo struct {
	db *DB
}

// NewSportRepo creates a new sport repository
func NewSportRepo(db *DB) *SportRepo {
	return &SportRepo{db: db}
}

const sportColumns = `id, title, category, description, image, position, created_at`

func scanSport(row interface{ Scan(...any) error }) (*models.Sport, error) {
	s := &models.Sport{}
	err := row.Scan(&s.ID, &s.Title, &s.Category, &s.Description, &s.Image, &s.Position, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSportNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves sports by position, newest first within a position
func (r *SportRepo) List(ctx context.Context) ([]*models.Sport, error) {
	rows, err := r.db.query(ctx, "SELECT "+sportColumns+" FROM sports ORDER BY position ASC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sports := []*models.Sport{}
	for rows.Next() {
		s, err := scanSport(rows)
		if err != nil {
			return nil, err
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}

// GetByID retrieves a sport by ID
func (r *SportRepo) GetByID(ctx context.Context, id int64) (*models.Sport, error) {
	return scanSport(r.db.queryRow(ctx, "SELECT "+sportColumns+" FROM sports WHERE id = ?", id))
}

// Create creates a new sport
func (r *SportRepo) Create(ctx context.Context, s *models.Sport) error {
	s.CreatedAt = now()
	return r.db.queryRow(ctx, `
		INSERT INTO sports (title, category, description, image, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, s.Title, s.Category, s.Description, s.Image, s.Position, s.CreatedAt).Scan(&s.ID)
}

// Update replaces every editable field of a sport
func (r *SportRepo) Update(ctx context.Context, s *models.Sport) error {
	result, err := r.db.exec(ctx, `
		UPDATE sports
		SET title = ?, category = ?, description = ?, image = ?, position = ?
		WHERE id = ?
	`, s.Title, s.Category, s.Description, s.Image, s.Position, s.ID)
	if err != nil {
		return err
	}
	return affected(result, ErrSportNotFound)
}

// Delete deletes a sport
func (r *SportRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.exec(ctx, "DELETE FROM sports WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(result, ErrSportNotFound)
}
