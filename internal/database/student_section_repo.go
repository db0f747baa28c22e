package database

import (
	"context"
	"database/sql"
	"errors"

	"schoolsite-backend/internal/models"
)

var ErrStudentSectionNotFound = errors.New("student section not found")

// StudentSectionRepo handles student page section database operations
type StudentSectionRepo struct {
	db *DB
}

// NewStudentSectionRepo creates a new student section repository
func NewStudentSectionRepo(db *DB) *StudentSectionRepo {
	return &StudentSectionRepo{db: db}
}

const studentSectionColumns = `id, title, description, image, created_at`

func scanStudentSection(row interface{ Scan(...any) error }) (*models.StudentSection, error) {
	s := &models.StudentSection{}
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Image, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStudentSectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves sections in creation order
func (r *StudentSectionRepo) List(ctx context.Context) ([]*models.StudentSection, error) {
	rows, err := r.db.query(ctx, "SELECT "+studentSectionColumns+" FROM student_sections ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []*models.StudentSection{}
	for rows.Next() {
		s, err := scanStudentSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// GetByID retrieves a section by ID
func (r *StudentSectionRepo) GetByID(ctx context.Context, id int64) (*models.StudentSection, error) {
	return scanStudentSection(r.db.queryRow(ctx, "SELECT "+studentSectionColumns+" FROM student_sections WHERE id = ?", id))
}

// Create creates a new section
func (r *StudentSectionRepo) Create(ctx context.Context, s *models.StudentSection) error {
	s.CreatedAt = now()
	return r.db.queryRow(ctx, `
		INSERT INTO student_sections (title, description, image, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, s.Title, s.Description, s.Image, s.CreatedAt).Scan(&s.ID)
}

// Update replaces every editable field of a section
func (r *StudentSectionRepo) Update(ctx context.Context, s *models.StudentSection) error {
	result, err := r.db.exec(ctx, `
		UPDATE student_sections SET title = ?, description = ?, image = ? WHERE id = ?
	`, s.Title, s.Description, s.Image, s.ID)
	if err != nil {
		return err
	}
	return affected(result, ErrStudentSectionNotFound)
}

// Delete deletes a section
func (r *StudentSectionRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.exec(ctx, "DELETE FROM student_sections WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(result, ErrStudentSectionNotFound)
}
