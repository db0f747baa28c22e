package database

import (
	"context"
	"database/sql"
	"errors"

	"schoolsite-backend/internal/models"
)

var ErrTeacherNotFound = errors.New("teacher not found")

// TeacherRepo handles teacher database operations
type TeacherRepo struct {
	db *DB
}

// NewTeacherRepo creates a new teacher repository
func NewTeacherRepo(db *DB) *TeacherRepo {
	return &TeacherRepo{db: db}
}

const teacherColumns = `id, name, subject, role, class, stream, experience, qualification,
	bio, photo, photo_public_id, email, phone, created_at`

func scanTeacher(row interface{ Scan(...any) error }) (*models.Teacher, error) {
	t := &models.Teacher{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Subject, &t.Role, &t.Class, &t.Stream, &t.Experience, &t.Qualification,
		&t.Bio, &t.Photo, &t.PhotoPublicID, &t.Email, &t.Phone, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeacherNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves all teachers ordered by name
func (r *TeacherRepo) List(ctx context.Context) ([]*models.Teacher, error) {
	rows, err := r.db.query(ctx, "SELECT "+teacherColumns+" FROM teachers ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachers := []*models.Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// GetByID retrieves a teacher by ID
func (r *TeacherRepo) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return scanTeacher(r.db.queryRow(ctx, "SELECT "+teacherColumns+" FROM teachers WHERE id = ?", id))
}

// Create creates a new teacher
func (r *TeacherRepo) Create(ctx context.Context, t *models.Teacher) error {
	t.CreatedAt = now()
	return r.db.queryRow(ctx, `
		INSERT INTO teachers (
			name, subject, role, class, stream, experience, qualification,
			bio, photo, photo_public_id, email, phone, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, t.Name, t.Subject, t.Role, t.Class, t.Stream, t.Experience, t.Qualification,
		t.Bio, t.Photo, t.PhotoPublicID, t.Email, t.Phone, t.CreatedAt).Scan(&t.ID)
}

// Update replaces every editable field of a teacher
func (r *TeacherRepo) Update(ctx context.Context, t *models.Teacher) error {
	result, err := r.db.exec(ctx, `
		UPDATE teachers SET
			name = ?,
			subject = ?,
			role = ?,
			class = ?,
			stream = ?,
			experience = ?,
			qualification = ?,
			bio = ?,
			photo = ?,
			photo_public_id = ?,
			email = ?,
			phone = ?
		WHERE id = ?
	`, t.Name, t.Subject, t.Role, t.Class, t.Stream, t.Experience, t.Qualification,
		t.Bio, t.Photo, t.PhotoPublicID, t.Email, t.Phone, t.ID)
	if err != nil {
		return err
	}
	return affected(result, ErrTeacherNotFound)
}

// Delete deletes a teacher
func (r *TeacherRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.exec(ctx, "DELETE FROM teachers WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(result, ErrTeacherNotFound)
}
