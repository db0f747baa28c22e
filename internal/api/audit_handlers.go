package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/models"
)

// maxAuditPageSize caps the limit query parameter
const maxAuditPageSize = 1000

// record writes an audit entry for userID. Failures are logged, never
// returned, so a broken audit table does not fail the request.
func (h *Handler) record(c echo.Context, userID int64, action, target string, details any) {
	if err := h.audit.Log(c.Request().Context(), userID, action, target, details, c.RealIP()); err != nil {
		h.log.Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

// recordFromContext writes an audit entry for the authenticated caller
func (h *Handler) recordFromContext(c echo.Context, action, target string, details any) {
	var userID int64
	if identity := auth.IdentityFromContext(c); identity != nil {
		userID = identity.UserID
	}
	h.record(c, userID, action, target, details)
}

// listAuditLogs handles GET /api/admin/audit
func (h *Handler) listAuditLogs(c echo.Context) error {
	filter := models.AuditFilter{Limit: 50}

	if limit := c.QueryParam("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 && l <= maxAuditPageSize {
			filter.Limit = l
		}
	}
	if offset := c.QueryParam("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	if userID := c.QueryParam("user_id"); userID != "" {
		if uid, err := strconv.ParseInt(userID, 10, 64); err == nil {
			filter.UserID = &uid
		}
	}
	filter.Action = c.QueryParam("action")

	logs, total, err := h.audit.List(c.Request().Context(), filter)
	if err != nil {
		return h.serverError(c, err, "Failed to fetch audit logs")
	}

	return c.JSON(http.StatusOK, models.AuditListResponse{
		Logs:   logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
