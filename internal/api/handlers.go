package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/metrics"
	"schoolsite-backend/internal/records"
	"schoolsite-backend/internal/storage"
	"schoolsite-backend/internal/validation"
)

// Deps are the collaborators of the HTTP handlers. Images and Records are
// optional; their routes are only mounted when set.
type Deps struct {
	DB      *database.DB
	Auth    *auth.Service
	Gate    *auth.Gate
	Cookies auth.CookiePolicy
	Limiter auth.LoginLimiter
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	Images  storage.ImageStore
	Records records.Store
}

// Handler serves the /api routes
type Handler struct {
	db      *database.DB
	auth    *auth.Service
	gate    *auth.Gate
	cookies auth.CookiePolicy
	limiter auth.LoginLimiter
	metrics *metrics.Metrics
	log     zerolog.Logger
	images  storage.ImageStore
	records records.Store
	now     func() time.Time

	users           *database.UserRepo
	audit           *database.AuditRepo
	settings        *database.SettingsRepo
	teachers        *database.TeacherRepo
	alumni          *database.AlumniRepo
	campus          *database.CampusRepo
	sports          *database.SportRepo
	gallery         *database.GalleryRepo
	trustees        *database.TrusteeRepo
	studentSections *database.StudentSectionRepo
}

// NewHandler builds the repositories on d.DB and wires the handlers
func NewHandler(d Deps) *Handler {
	return &Handler{
		db:      d.DB,
		auth:    d.Auth,
		gate:    d.Gate,
		cookies: d.Cookies,
		limiter: d.Limiter,
		metrics: d.Metrics,
		log:     d.Logger,
		images:  d.Images,
		records: d.Records,
		now:     time.Now,

		users:           database.NewUserRepo(d.DB),
		audit:           database.NewAuditRepo(d.DB),
		settings:        database.NewSettingsRepo(d.DB),
		teachers:        database.NewTeacherRepo(d.DB),
		alumni:          database.NewAlumniRepo(d.DB),
		campus:          database.NewCampusRepo(d.DB),
		sports:          database.NewSportRepo(d.DB),
		gallery:         database.NewGalleryRepo(d.DB),
		trustees:        database.NewTrusteeRepo(d.DB),
		studentSections: database.NewStudentSectionRepo(d.DB),
	}
}

// message writes the {"message": ...} body used across the API
func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}

// serverError logs err and answers 500 with msg
func (h *Handler) serverError(c echo.Context, err error, msg string) error {
	h.log.Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg(msg)
	return message(c, http.StatusInternalServerError, msg)
}

// bindAndValidate decodes the request body into req and runs the struct
// validator. The returned error is an *echo.HTTPError ready to be returned.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validation.Message(err))
	}
	return nil
}

// removeImage deletes a stored image that is no longer referenced. Storage
// errors are logged; the row change has already happened.
func (h *Handler) removeImage(ctx context.Context, publicID string) {
	if h.images == nil || publicID == "" {
		return
	}
	if err := h.images.Delete(ctx, publicID); err != nil {
		h.log.Warn().Err(err).Str("public_id", publicID).Msg("remove stored image")
	}
}

// parseID reads a positive numeric path parameter
func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Health check
func (h *Handler) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "OK",
	})
}

func (h *Handler) healthDB(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error().Err(err).Msg("database ping failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status":  "ERROR",
			"message": "Database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "OK",
		"driver": string(h.db.Dialect()),
	})
}
