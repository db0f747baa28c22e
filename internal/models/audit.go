package models

import "time"

// AuditLog represents a record of an administrative action
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details"` // JSON string
	IPAddress string    `json:"ip_address"`
}

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	UserID *int64
	Action string
	Limit  int
	Offset int
}

// Common audit actions
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionPasswordChange = "password.change"
	ActionOTPRequest     = "otp.request"
	ActionOTPVerify      = "otp.verify"
	ActionImageUpload    = "image.upload"
)

// Content mutation verbs, combined with a resource name as "teacher.create"
const (
	VerbCreate = "create"
	VerbUpdate = "update"
	VerbDelete = "delete"
)

// ResourceAction builds the audit action for a content mutation
func ResourceAction(resource, verb string) string {
	return resource + "." + verb
}

// AuditListResponse is one page of audit log entries
type AuditListResponse struct {
	Logs   []*AuditLog `json:"logs"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
