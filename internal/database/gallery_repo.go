package database

import (
	"context"
	"errors"

	"schoolsite-backend/internal/models"
)

var ErrGalleryImageNotFound = errors.New("gallery image not found")

// GalleryRepo handles gallery database operations
type GalleryRepo struct {
	db *DB
}

// NewGalleryRepo creates a new gallery repository
func NewGalleryRepo(db *DB) *GalleryRepo {
	return &GalleryRepo{db: db}
}

// List retrieves gallery images, newest first
func (r *GalleryRepo) List(ctx context.Context) ([]*models.GalleryImage, error) {
	rows, err := r.db.query(ctx, "SELECT id, image, created_at FROM gallery ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []*models.GalleryImage{}
	for rows.Next() {
		img := &models.GalleryImage{}
		if err := rows.Scan(&img.ID, &img.Image, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Create adds an image to the gallery
func (r *GalleryRepo) Create(ctx context.Context, img *models.GalleryImage) error {
	img.CreatedAt = now()
	return r.db.queryRow(ctx,
		"INSERT INTO gallery (image, created_at) VALUES (?, ?) RETURNING id",
		img.Image, img.CreatedAt,
	).Scan(&img.ID)
}

// Delete removes an image from the gallery
func (r *GalleryRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.exec(ctx, "DELETE FROM gallery WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(result, ErrGalleryImageNotFound)
}
