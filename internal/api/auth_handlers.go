package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/metrics"
	"schoolsite-backend/internal/models"
)

// login handles POST /api/auth/login
func (h *Handler) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.Login(metrics.LoginMissingCredentials)
		return message(c, http.StatusBadRequest, "Email and password required")
	}

	ctx := c.Request().Context()
	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			h.metrics.Login(metrics.LoginMissingCredentials)
			return message(c, http.StatusBadRequest, "Email and password required")
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.metrics.Login(metrics.LoginInvalidCredentials)
			return message(c, http.StatusUnauthorized, "Invalid credentials")
		default:
			h.metrics.Login(metrics.LoginError)
			return h.serverError(c, err, "Server error")
		}
	}

	if err := h.limiter.Reset(ctx, c.RealIP()); err != nil {
		h.log.Warn().Err(err).Msg("reset login limiter")
	}

	h.metrics.Login(metrics.LoginSuccess)
	h.record(c, result.User.ID, models.ActionLogin, result.User.Email, nil)
	c.SetCookie(h.cookies.Issue(result.Token))

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    result.User,
		"token":   result.Token,
	})
}

// me handles GET /api/auth/me. It never fails: a missing or invalid token
// yields a null user.
func (h *Handler) me(c echo.Context) error {
	identity, ok := h.auth.Identify(c.Request())
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"user": nil})
	}
	return c.JSON(http.StatusOK, map[string]any{"user": identity})
}

// logout handles POST /api/auth/logout. The token itself stays valid until
// it expires; only the cookie is removed.
func (h *Handler) logout(c echo.Context) error {
	if identity, ok := h.auth.Identify(c.Request()); ok {
		h.record(c, identity.UserID, models.ActionLogout, "", nil)
	}

	c.SetCookie(h.cookies.Clear())
	return message(c, http.StatusOK, "Logged out successfully")
}
