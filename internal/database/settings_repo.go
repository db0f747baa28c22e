package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Setting keys for singleton page documents
const (
	SettingTrustInfo    = "about.trust_info"
	SettingStudentStats = "students.stats"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepo stores small JSON documents under well-known keys
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get retrieves a setting value
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.queryRow(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	return value, err
}

// Set sets a setting value
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now())
	return err
}

// GetJSON decodes the setting stored under key into dst
func (r *SettingsRepo) GetJSON(ctx context.Context, key string, dst any) error {
	value, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("decode setting %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key
func (r *SettingsRepo) SetJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return r.Set(ctx, key, string(b))
}
