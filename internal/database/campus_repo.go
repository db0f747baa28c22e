package database

import (
	"context"
	"database/sql"
	"errors"

	"schoolsite-backend/internal/models"
)

var ErrCampusSectionNotFound = errors.New("campus section not found")

// CampusRepo handles campus section database operations
type CampusRepo struct {
	db *DB
}

// NewCampusRepo creates a new campus repository
func NewCampusRepo(db *DB) *CampusRepo {
	return &CampusRepo{db: db}
}

const campusColumns = `id, title, description, image, position, created_at`

func scanCampusSection(row interface{ Scan(...any) error }) (*models.CampusSection, error) {
	s := &models.CampusSection{}
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Image, &s.Position, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCampusSectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves campus sections by position
func (r *CampusRepo) List(ctx context.Context) ([]*models.CampusSection, error) {
	rows, err := r.db.query(ctx, "SELECT "+campusColumns+" FROM campus_sections ORDER BY position ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []*models.CampusSection{}
	for rows.Next() {
		s, err := scanCampusSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// GetByID retrieves a campus section by ID
func (r *CampusRepo) GetByID(ctx context.Context, id int64) (*models.CampusSection, error) {
	return scanCampusSection(r.db.queryRow(ctx, "SELECT "+campusColumns+" FROM campus_sections WHERE id = ?", id))
}

// Create creates a new campus section
func (r *CampusRepo) Create(ctx context.Context, s *models.CampusSection) error {
	s.CreatedAt = now()
	return r.db.queryRow(ctx, `
		INSERT INTO campus_sections (title, description, image, position, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, s.Title, s.Description, s.Image, s.Position, s.CreatedAt).Scan(&s.ID)
}

// Update replaces every editable field of a campus section
func (r *CampusRepo) Update(ctx context.Context, s *models.CampusSection) error {
	result, err := r.db.exec(ctx, `
		UPDATE campus_sections
		SET title = ?, description = ?, image = ?, position = ?
		WHERE id = ?
	`, s.Title, s.Description, s.Image, s.Position, s.ID)
	if err != nil {
		return err
	}
	return affected(result, ErrCampusSectionNotFound)
}

// Delete deletes a campus section
func (r *CampusRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.exec(ctx, "DELETE FROM campus_sections WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(result, ErrCampusSectionNotFound)
}
