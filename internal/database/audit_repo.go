package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"schoolsite-backend/internal/models"
)

// DefaultAuditPageSize is used when a listing does not ask for a limit
const DefaultAuditPageSize = 50

// AuditRepo handles audit log database operations
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new audit repository
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Create creates a new audit log entry
func (r *AuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	var userID sql.NullInt64
	if log.UserID != 0 {
		userID = sql.NullInt64{Int64: log.UserID, Valid: true}
	}

	return r.db.queryRow(ctx, `
		INSERT INTO audit_logs (timestamp, user_id, action, target, details, ip_address)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, log.Timestamp, userID, log.Action, log.Target, log.Details, log.IPAddress).Scan(&log.ID)
}

// Log is a convenience method to create an audit log entry with current timestamp
func (r *AuditRepo) Log(ctx context.Context, userID int64, action, target string, details any, ipAddress string) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(b)
		}
	}

	return r.Create(ctx, &models.AuditLog{
		Timestamp: now(),
		UserID:    userID,
		Action:    action,
		Target:    target,
		Details:   detailsJSON,
		IPAddress: ipAddress,
	})
}

// List retrieves audit logs, newest first, with pagination and optional filters
func (r *AuditRepo) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLog, int, error) {
	baseQuery := "FROM audit_logs WHERE 1=1"
	args := []any{}

	if filter.UserID != nil {
		baseQuery += " AND user_id = ?"
		args = append(args, *filter.UserID)
	}
	if filter.Action != "" {
		baseQuery += " AND action = ?"
		args = append(args, filter.Action)
	}

	var total int
	if err := r.db.queryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultAuditPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := "SELECT id, timestamp, user_id, action, target, details, ip_address " + baseQuery +
		" ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := []*models.AuditLog{}
	for rows.Next() {
		log := &models.AuditLog{}
		var userID sql.NullInt64
		if err := rows.Scan(
			&log.ID, &log.Timestamp, &userID,
			&log.Action, &log.Target, &log.Details, &log.IPAddress,
		); err != nil {
			return nil, 0, err
		}
		if userID.Valid {
			log.UserID = userID.Int64
		}
		logs = append(logs, log)
	}

	return logs, total, rows.Err()
}
