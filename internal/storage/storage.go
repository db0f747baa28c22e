// Package storage keeps uploaded images in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"schoolsite-backend/internal/config"
	"schoolsite-backend/internal/models"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 5 * 1024 * 1024 // 5 MB

var (
	ErrFileTooBig           = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType      = errors.New("invalid file type, only JPEG, PNG, WebP and AVIF images are allowed")
	ErrUnknownKind          = errors.New("unknown upload kind")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")
	ErrDeleteFailed         = errors.New("failed to delete file")

	extensions = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/avif": ".avif",
	}
)

// Kind describes where one category of upload is stored
type Kind struct {
	Folder string
	Type   string
}

// Kinds maps the upload route names to their folders
var Kinds = map[string]Kind{
	"teacher-photo": {Folder: "teachers", Type: "teacher"},
	"student-image": {Folder: "students", Type: "student"},
	"trustee-photo": {Folder: "trustees"},
	"campus-image":  {Folder: "campus", Type: "campus"},
	"sports-image":  {Folder: "sports", Type: "sports"},
}

// LookupKind returns the kind registered under name
func LookupKind(name string) (Kind, error) {
	kind, ok := Kinds[name]
	if !ok {
		return Kind{}, ErrUnknownKind
	}
	return kind, nil
}

// ImageStore stores and removes uploaded images
type ImageStore interface {
	Upload(ctx context.Context, folder string, file io.Reader, size int64, contentType string) (*models.UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}

// validate checks size and type and returns the normalised content type and
// file extension
func validate(size int64, contentType string) (string, string, error) {
	if size > MaxImageSize {
		return "", "", ErrFileTooBig
	}
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	ext, ok := extensions[normalized]
	if !ok {
		return "", "", ErrInvalidFileType
	}
	return normalized, ext, nil
}

func objectKey(folder, ext string) string {
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), ext)
}

// MinIOStore implements ImageStore on MinIO or any S3-compatible service
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOStore connects to the configured endpoint and makes sure the
// bucket exists
func NewMinIOStore(ctx context.Context, cfg config.StorageConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	s := &MinIOStore{client: client, bucket: cfg.Bucket, publicURL: publicURL}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

// Upload stores file under folder and returns its public URL and key
func (s *MinIOStore) Upload(ctx context.Context, folder string, file io.Reader, size int64, contentType string) (*models.UploadedImage, error) {
	normalized, ext, err := validate(size, contentType)
	if err != nil {
		return nil, err
	}

	key := objectKey(folder, ext)
	_, err = s.client.PutObject(ctx, s.bucket, key, file, size, minio.PutObjectOptions{
		ContentType: normalized,
		UserMetadata: map[string]string{
			"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &models.UploadedImage{URL: s.publicURL + "/" + key, PublicID: key}, nil
}

// Delete removes an object. Empty keys are ignored.
func (s *MinIOStore) Delete(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// MemoryStore keeps images in memory. Used by tests and local development
// without object storage.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

// Upload implements ImageStore
func (s *MemoryStore) Upload(_ context.Context, folder string, file io.Reader, size int64, contentType string) (*models.UploadedImage, error) {
	_, ext, err := validate(size, contentType)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrFileTooBig
	}

	key := objectKey(folder, ext)
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	return &models.UploadedImage{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

// Delete implements ImageStore
func (s *MemoryStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, publicID)
	return nil
}

// Has reports whether publicID is stored
func (s *MemoryStore) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicID]
	return ok
}
